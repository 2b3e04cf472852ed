// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package lualex

import (
	"testing"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	s := NewScanner(src)
	var toks []Token
	for {
		tok, err := s.Scan()
		if err != nil {
			t.Fatalf("Scan(%q): %v", src, err)
		}
		if tok.Kind == EOFToken {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestScannerKinds(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenKind
	}{
		{"", nil},
		{"foo", []TokenKind{IdentifierToken}},
		{"  foo  ", []TokenKind{IdentifierToken}},
		{"local x = 1", []TokenKind{LocalToken, IdentifierToken, AssignToken, NumberToken}},
		{"a += 1", []TokenKind{IdentifierToken, AddAssignToken, NumberToken}},
		{"a // b", []TokenKind{IdentifierToken, FloorDivToken, IdentifierToken}},
		{"a //= b", []TokenKind{IdentifierToken, FloorDivAssignToken, IdentifierToken}},
		{"x..y", []TokenKind{IdentifierToken, ConcatToken, IdentifierToken}},
		{"x..=y", []TokenKind{IdentifierToken, ConcatAssignToken, IdentifierToken}},
		{"...", []TokenKind{VarargToken}},
		{"a?.b", []TokenKind{IdentifierToken, QuestionToken, DotToken, IdentifierToken}},
		{"function() end", []TokenKind{FunctionToken, LParenToken, RParenToken, EndToken}},
		{"-- comment\nx", []TokenKind{IdentifierToken}},
		{"--[[ long ]]x", []TokenKind{IdentifierToken}},
		{`"hi"`, []TokenKind{StringToken}},
		{"[[long string]]", []TokenKind{StringToken}},
		{"continue", []TokenKind{ContinueToken}},
		{"::label::", []TokenKind{DoubleColonToken, IdentifierToken, DoubleColonToken}},
		{"0x1p4", []TokenKind{NumberToken}},
		{"1_000", []TokenKind{NumberToken}},
	}
	for _, test := range tests {
		toks := scanAll(t, test.src)
		if len(toks) != len(test.want) {
			t.Errorf("scan(%q) = %d tokens, want %d", test.src, len(toks), len(test.want))
			continue
		}
		for i, tok := range toks {
			if tok.Kind != test.want[i] {
				t.Errorf("scan(%q)[%d].Kind = %v, want %v", test.src, i, tok.Kind, test.want[i])
			}
		}
	}
}

func TestScannerTrivia(t *testing.T) {
	src := "local x -- trailing\n-- leading\n= 1"
	s := NewScanner(src)
	tok, err := s.Scan() // local
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != LocalToken {
		t.Fatalf("first token = %v, want LocalToken", tok.Kind)
	}
	tok, err = s.Scan() // x
	if err != nil {
		t.Fatal(err)
	}
	if len(tok.TrailingTrivia) == 0 {
		t.Fatal("expected trailing trivia after 'x'")
	}
	tok, err = s.Scan() // =
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != AssignToken {
		t.Fatalf("third token = %v, want AssignToken", tok.Kind)
	}
	if len(tok.LeadingTrivia) == 0 {
		t.Fatal("expected leading trivia (comment) before '='")
	}
}

func TestScannerRoundTrip(t *testing.T) {
	src := "  local   x = 1 + 2 -- sum\n"
	s := NewScanner(src)
	var sb []byte
	for {
		tok, err := s.Scan()
		if err != nil {
			t.Fatal(err)
		}
		for _, tr := range tok.LeadingTrivia {
			sb = append(sb, tr.Text(src)...)
		}
		if tok.Kind == EOFToken {
			break
		}
		sb = append(sb, tok.Text(src)...)
		for _, tr := range tok.TrailingTrivia {
			sb = append(sb, tr.Text(src)...)
		}
	}
	if string(sb) != src {
		t.Errorf("round trip = %q, want %q", sb, src)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"", `""`},
		{"hello", `"hello"`},
		{"a\nb", `"a\nb"`},
		{`a"b`, `"a\"b"`},
	}
	for _, test := range tests {
		if got := Quote(test.s); got != test.want {
			t.Errorf("Quote(%q) = %q, want %q", test.s, got, test.want)
		}
	}
}
