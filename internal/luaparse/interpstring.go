// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaparse

import (
	"fmt"

	"lucerna.dev/lucerna/internal/lualex"

	"lucerna.dev/lucerna/internal/luaast"
)

// decodeInterpolatedString splits a backtick-delimited token's content
// into literal and embedded-expression segments. The scanner reads the
// whole `` `...` `` as one token (see [lualex.Scanner.Scan]); each
// embedded `{expr}` is parsed here by recursively invoking the parser on
// the substring that follows the opening brace.
func decodeInterpolatedString(file string, tok lualex.Token, src string, preserveTokens bool) ([]luaast.InterpolatedStringSegment, error) {
	raw := tok.Text(src)
	if len(raw) < 2 || raw[0] != '`' || raw[len(raw)-1] != '`' {
		return nil, fmt.Errorf("malformed interpolated string")
	}
	content := raw[1 : len(raw)-1]

	var segments []luaast.InterpolatedStringSegment
	var literal []byte
	flush := func() {
		if len(literal) > 0 {
			segments = append(segments, luaast.InterpolatedStringSegment{Literal: string(literal)})
			literal = literal[:0]
		}
	}

	for i := 0; i < len(content); {
		switch content[i] {
		case '\\':
			frag, consumed, err := decodeEscape(content[i:])
			if err != nil {
				return nil, &ParserError{File: file, Position: tok.Position, Message: err.Error()}
			}
			literal = append(literal, frag...)
			i += consumed
		case '{':
			flush()
			expr, end, err := parseInterpolationExpr(file, content[i+1:], preserveTokens)
			if err != nil {
				return nil, err
			}
			segments = append(segments, luaast.InterpolatedStringSegment{Expression: expr})
			i += 1 + end
		default:
			literal = append(literal, content[i])
			i++
		}
	}
	flush()
	return segments, nil
}

// parseInterpolationExpr parses one embedded expression starting right
// after its opening `{`. It returns the expression and the offset (within
// body) of the first byte past the matching `}`.
func parseInterpolationExpr(file, body string, preserveTokens bool) (expr luaast.Expression, end int, err error) {
	sub := NewParser(file, body, PreserveTokens(preserveTokens))
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(bailout); !ok {
					panic(r)
				}
			}
		}()
		sub.next()
		expr = sub.parseExpression()
	}()
	if sub.err != nil {
		return nil, 0, sub.err
	}
	if sub.tok.Kind != lualex.RBraceToken {
		return nil, 0, &ParserError{File: file, Position: sub.tok.Position, Message: "expected '}' to close interpolated expression"}
	}
	return expr, sub.tok.End, nil
}
