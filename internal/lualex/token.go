// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package lualex provides a scanner to split a byte stream
// into Lua and Luau lexical elements, preserving surrounding trivia
// (whitespace and comments) so that source can be regenerated exactly.
package lualex

import "fmt"

// Position represents a position in a textual source file.
type Position struct {
	// Line is the 1-based line number.
	Line int
	// Column is the 1-based column number, counted in bytes.
	Column int
	// Offset is the 0-based byte offset into the source buffer.
	Offset int
}

// String formats the position as "line:col".
func (pos Position) String() string {
	if pos.Line <= 0 {
		return "<invalid position>"
	}
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}

// TriviaKind distinguishes the two kinds of trivia a token may carry.
type TriviaKind int

const (
	// WhitespaceTrivia is a run of spaces, tabs, or newlines.
	WhitespaceTrivia TriviaKind = iota
	// CommentTrivia is a short (`--`) or long (`--[[ ]]`) comment.
	CommentTrivia
)

// Trivia is a span of source that does not affect the meaning of a token
// but must be preserved for exact round-tripping.
type Trivia struct {
	Kind TriviaKind
	// Start and End delimit the trivia in the original source buffer,
	// when the trivia was read from one. Content holds the text otherwise.
	Start, End int
	Content    string
}

// Text returns the trivia's text, reading from src if Content is empty
// and the trivia references a span.
func (t Trivia) Text(src string) string {
	if t.Content != "" || t.Start == t.End {
		return t.Content
	}
	return src[t.Start:t.End]
}

//go:generate stringer -type=TokenKind -linecomment

// TokenKind is an enumeration of valid [Token] types.
// The zero value is [ErrorToken].
type TokenKind int

const (
	// ErrorToken indicates an invalid token.
	ErrorToken TokenKind = iota
	// EOFToken marks the end of the token stream.
	EOFToken
	// IdentifierToken indicates a name; [Token.Text] returns it.
	IdentifierToken
	// StringToken indicates a literal string; [Token.Text] returns it as written, delimiters included.
	StringToken
	// NumberToken indicates a numeric constant; [Token.Text] returns the literal as written.
	NumberToken
	// InterpStringBeginToken is the leading `` `text{ `` segment of an interpolated string.
	InterpStringBeginToken
	// InterpStringMiddleToken is a `}text{` segment of an interpolated string.
	InterpStringMiddleToken
	// InterpStringEndToken is the trailing `}text\`` segment of an interpolated string.
	InterpStringEndToken
	// InterpStringSimpleToken is a whole `` `text` `` interpolated string, with or without
	// `{}` expressions; the scanner produces it for every interpolated string.
	InterpStringSimpleToken

	// Keywords

	AndToken      // and
	BreakToken    // break
	ContinueToken // continue
	DoToken       // do
	ElseToken     // else
	ElseifToken   // elseif
	EndToken      // end
	FalseToken    // false
	ForToken      // for
	FunctionToken // function
	IfToken       // if
	InToken       // in
	LocalToken    // local
	NilToken      // nil
	NotToken      // not
	OrToken       // or
	RepeatToken   // repeat
	ReturnToken   // return
	ThenToken     // then
	TrueToken     // true
	UntilToken    // until
	WhileToken    // while

	// Operators and punctuation

	AddToken            // +
	SubToken            // -
	MulToken            // *
	DivToken            // /
	FloorDivToken       // //
	ModToken            // %
	PowToken            // ^
	LenToken            // #
	BitAndToken         // &
	BitXorToken         // ~
	BitOrToken          // |
	LShiftToken         // <<
	RShiftToken         // >>
	EqualToken          // ==
	NotEqualToken       // ~=
	LessEqualToken      // <=
	GreaterEqualToken   // >=
	LessToken           // <
	GreaterToken        // >
	AssignToken         // =
	AddAssignToken      // +=
	SubAssignToken      // -=
	MulAssignToken      // *=
	DivAssignToken      // /=
	FloorDivAssignToken // //=
	ModAssignToken      // %=
	PowAssignToken      // ^=
	ConcatAssignToken   // ..=
	LParenToken         // (
	RParenToken         // )
	LBraceToken         // {
	RBraceToken         // }
	LBracketToken       // [
	RBracketToken       // ]
	SemiToken           // ;
	ColonToken          // :
	DoubleColonToken    // ::
	CommaToken          // ,
	DotToken            // .
	ConcatToken         // ..
	VarargToken         // ...
	QuestionToken       // ?
	ThinArrowToken      // ->
)

var keywords = map[string]TokenKind{
	"and":      AndToken,
	"break":    BreakToken,
	"continue": ContinueToken,
	"do":       DoToken,
	"else":     ElseToken,
	"elseif":   ElseifToken,
	"end":      EndToken,
	"false":    FalseToken,
	"for":      ForToken,
	"function": FunctionToken,
	"if":       IfToken,
	"in":       InToken,
	"local":    LocalToken,
	"nil":      NilToken,
	"not":      NotToken,
	"or":       OrToken,
	"repeat":   RepeatToken,
	"return":   ReturnToken,
	"then":     ThenToken,
	"true":     TrueToken,
	"until":    UntilToken,
	"while":    WhileToken,
}

// Token represents a single lexical element in a Lua/Luau source file,
// together with the trivia that immediately surrounds it.
//
// A Token refers to its source in one of three ways: (a) a [Start,End)
// byte span into the original buffer, when HasContent is false, (b) owned
// Content with a known Position, or (c) owned Content only. Reading a
// span-referencing token requires the original buffer; reading a
// Content-carrying token never does.
type Token struct {
	Kind           TokenKind
	Position       Position
	Start, End     int
	Content        string
	HasContent     bool
	LeadingTrivia  []Trivia
	TrailingTrivia []Trivia
}

// Text returns the literal text of the token as it appeared in src.
func (tok Token) Text(src string) string {
	if tok.HasContent {
		return tok.Content
	}
	return src[tok.Start:tok.End]
}

// ToContent returns a copy of tok with the span reference resolved into
// owned Content, reading from src. Trivia is resolved the same way.
// ToContent is idempotent: calling it on an already-owned token is a no-op.
func (tok Token) ToContent(src string) Token {
	if !tok.HasContent {
		tok.Content = src[tok.Start:tok.End]
		tok.HasContent = true
	}
	tok.LeadingTrivia = resolveTrivia(tok.LeadingTrivia, src)
	tok.TrailingTrivia = resolveTrivia(tok.TrailingTrivia, src)
	return tok
}

func resolveTrivia(trivia []Trivia, src string) []Trivia {
	if len(trivia) == 0 {
		return trivia
	}
	out := make([]Trivia, len(trivia))
	for i, t := range trivia {
		if t.Content == "" && t.Start != t.End {
			t.Content = src[t.Start:t.End]
		}
		out[i] = t
	}
	return out
}

// ClearComments removes comment trivia from tok, preserving whitespace trivia.
func (tok Token) ClearComments() Token {
	tok.LeadingTrivia = filterTrivia(tok.LeadingTrivia, WhitespaceTrivia)
	tok.TrailingTrivia = filterTrivia(tok.TrailingTrivia, WhitespaceTrivia)
	return tok
}

// ClearWhitespace removes whitespace trivia from tok, preserving comments.
func (tok Token) ClearWhitespace() Token {
	tok.LeadingTrivia = filterTrivia(tok.LeadingTrivia, CommentTrivia)
	tok.TrailingTrivia = filterTrivia(tok.TrailingTrivia, CommentTrivia)
	return tok
}

func filterTrivia(trivia []Trivia, keep TriviaKind) []Trivia {
	if len(trivia) == 0 {
		return nil
	}
	out := trivia[:0:0]
	for _, t := range trivia {
		if t.Kind == keep {
			out = append(out, t)
		}
	}
	return out
}
