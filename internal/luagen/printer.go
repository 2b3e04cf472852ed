// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luagen

import (
	"strconv"
	"strings"

	"lucerna.dev/lucerna/internal/lualex"
	"lucerna.dev/lucerna/internal/luaast"
)

// printer is the shared low-level writer used by all three styles. Dense
// and Readable drive it with synthesized literal text; RetainLines drives
// it with the original token span/content plus trivia, falling back to
// the same literal synthesis for any token that was never populated
// (i.e. a node constructed or replaced by a rule).
type printer struct {
	style      Style
	src        string
	columnSpan int

	b        strings.Builder
	col      int
	lastByte byte
	indent   int
}

func newPrinter(style Style, src string, columnSpan int) *printer {
	return &printer{style: style, src: src, columnSpan: columnSpan}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '.' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}

// writeRaw appends s verbatim, tracking column and the last emitted byte.
func (p *printer) writeRaw(s string) {
	if s == "" {
		return
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			p.col = 0
		} else {
			p.col++
		}
	}
	p.b.WriteString(s)
	p.lastByte = s[len(s)-1]
}

// emit writes an atomic piece of source text, inserting a single
// separating space first if omitting one would change the meaning of the
// token stream (the abutment rule shared by every generator style).
func (p *printer) emit(s string) {
	if s == "" {
		return
	}
	if p.lastByte != 0 && isWordByte(p.lastByte) && isWordByte(s[0]) {
		p.writeRaw(" ")
	} else if p.lastByte == '-' && s[0] == '-' {
		p.writeRaw(" ")
	} else if p.lastByte == '.' && s[0] == '.' {
		p.writeRaw(" ")
	}
	p.writeRaw(s)
	if p.style == Dense && p.col > p.columnSpan {
		p.breakLine()
	}
}

// space writes a single space in Readable mode and nothing in Dense,
// still subject to the abutment rule via emit.
func (p *printer) space() {
	if p.style == Readable {
		p.writeRaw(" ")
	}
}

// newline starts a fresh, correctly indented line. Used at statement
// boundaries in Readable, and as a safe wrap point in Dense.
func (p *printer) newline() {
	p.writeRaw("\n")
	if p.style == Readable {
		p.writeRaw(strings.Repeat("\t", p.indent))
	}
}

// breakLine is a column-width-triggered wrap; it never occurs inside an
// emitted token because it is only called between emit calls.
func (p *printer) breakLine() {
	p.writeRaw("\n")
}

func (p *printer) String() string {
	return p.b.String()
}

// ---- literal rendering shared by Dense/Readable and RetainLines fallback ----

func renderNumber(n *luaast.NumberExpression) string {
	if n.Token.HasContent || n.Token.End > n.Token.Start {
		// Caller should have used the original token; this path is the
		// literal-fallback used when no token was recorded.
	}
	if n.IsInteger {
		switch n.Representation {
		case luaast.HexRepresentation:
			return "0x" + strconv.FormatInt(n.IntegerValue, 16)
		case luaast.BinaryRepresentation:
			return "0b" + strconv.FormatInt(n.IntegerValue, 2)
		default:
			return strconv.FormatInt(n.IntegerValue, 10)
		}
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func renderString(s *luaast.StringExpression) string {
	switch s.Delimiter {
	case luaast.SingleQuoteDelimiter:
		return "'" + escapeString(s.Value, '\'') + "'"
	case luaast.LongBracketDelimiter:
		eq := strings.Repeat("=", s.LongBracketEq)
		return "[" + eq + "[" + s.Value + "]" + eq + "]"
	default:
		return "\"" + escapeString(s.Value, '"') + "\""
	}
}

func escapeString(s string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20:
			b.WriteString(strconv.Itoa(int(c)))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func binaryOperatorSymbol(op luaast.BinaryOperator) string {
	switch op {
	case luaast.OpAdd:
		return "+"
	case luaast.OpSub:
		return "-"
	case luaast.OpMul:
		return "*"
	case luaast.OpDiv:
		return "/"
	case luaast.OpFloorDiv:
		return "//"
	case luaast.OpMod:
		return "%"
	case luaast.OpPow:
		return "^"
	case luaast.OpConcat:
		return ".."
	case luaast.OpEqual:
		return "=="
	case luaast.OpNotEqual:
		return "~="
	case luaast.OpLessThan:
		return "<"
	case luaast.OpLessEqual:
		return "<="
	case luaast.OpGreaterThan:
		return ">"
	case luaast.OpGreaterEqual:
		return ">="
	case luaast.OpAnd:
		return "and"
	case luaast.OpOr:
		return "or"
	case luaast.OpBitAnd:
		return "&"
	case luaast.OpBitOr:
		return "|"
	case luaast.OpBitXor:
		return "~"
	case luaast.OpShiftLeft:
		return "<<"
	case luaast.OpShiftRight:
		return ">>"
	default:
		return "?"
	}
}

func unaryOperatorSymbol(op luaast.UnaryOperator) string {
	switch op {
	case luaast.OpNegate:
		return "-"
	case luaast.OpNot:
		return "not"
	case luaast.OpLength:
		return "#"
	case luaast.OpBitNot:
		return "~"
	default:
		return "?"
	}
}

func compoundOperatorSymbol(op luaast.CompoundOperator) string {
	switch op {
	case luaast.CompoundAdd:
		return "+="
	case luaast.CompoundSub:
		return "-="
	case luaast.CompoundMul:
		return "*="
	case luaast.CompoundDiv:
		return "/="
	case luaast.CompoundFloorDiv:
		return "//="
	case luaast.CompoundMod:
		return "%="
	case luaast.CompoundPow:
		return "^="
	case luaast.CompoundConcat:
		return "..="
	default:
		return "?="
	}
}

// tokenValid reports whether tok carries real source information (as
// opposed to being the zero value of a node built by a rule).
func tokenValid(tok lualex.Token) bool {
	return tok.HasContent || tok.End > tok.Start || tok.Kind != lualex.ErrorToken
}
