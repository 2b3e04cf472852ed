// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package lualex

import "strconv"

var tokenKindNames = map[TokenKind]string{
	ErrorToken:               "<error>",
	EOFToken:                 "<eof>",
	IdentifierToken:          "<name>",
	StringToken:              "<string>",
	NumberToken:              "<number>",
	InterpStringBeginToken:   "<string begin>",
	InterpStringMiddleToken:  "<string middle>",
	InterpStringEndToken:     "<string end>",
	InterpStringSimpleToken:  "<string>",
	AndToken:                 "and",
	BreakToken:               "break",
	ContinueToken:            "continue",
	DoToken:                  "do",
	ElseToken:                "else",
	ElseifToken:              "elseif",
	EndToken:                 "end",
	FalseToken:               "false",
	ForToken:                 "for",
	FunctionToken:            "function",
	IfToken:                  "if",
	InToken:                  "in",
	LocalToken:               "local",
	NilToken:                 "nil",
	NotToken:                 "not",
	OrToken:                  "or",
	RepeatToken:              "repeat",
	ReturnToken:              "return",
	ThenToken:                "then",
	TrueToken:                "true",
	UntilToken:               "until",
	WhileToken:               "while",
	AddToken:                 "+",
	SubToken:                 "-",
	MulToken:                 "*",
	DivToken:                 "/",
	FloorDivToken:            "//",
	ModToken:                 "%",
	PowToken:                 "^",
	LenToken:                 "#",
	BitAndToken:              "&",
	BitXorToken:              "~",
	BitOrToken:               "|",
	LShiftToken:              "<<",
	RShiftToken:              ">>",
	EqualToken:               "==",
	NotEqualToken:            "~=",
	LessEqualToken:           "<=",
	GreaterEqualToken:        ">=",
	LessToken:                "<",
	GreaterToken:             ">",
	AssignToken:              "=",
	AddAssignToken:           "+=",
	SubAssignToken:           "-=",
	MulAssignToken:           "*=",
	DivAssignToken:           "/=",
	FloorDivAssignToken:      "//=",
	ModAssignToken:           "%=",
	PowAssignToken:           "^=",
	ConcatAssignToken:        "..=",
	LParenToken:              "(",
	RParenToken:              ")",
	LBraceToken:              "{",
	RBraceToken:              "}",
	LBracketToken:            "[",
	RBracketToken:            "]",
	SemiToken:                ";",
	ColonToken:               ":",
	DoubleColonToken:         "::",
	CommaToken:               ",",
	DotToken:                 ".",
	ConcatToken:              "..",
	VarargToken:              "...",
	QuestionToken:            "?",
	ThinArrowToken:           "->",
}

// String returns the token kind's canonical textual form, matching how it
// appears in Lua/Luau source (for keywords and punctuation) or a bracketed
// placeholder (for names, strings and numbers, whose text varies).
func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}
