// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luagen

import (
	"lucerna.dev/lucerna/internal/lualex"
	"lucerna.dev/lucerna/internal/luaast"
)

// Generate regenerates source text for block. src is the original source
// buffer; it is read by RetainLines for any token that still carries a
// span reference. Nodes without token information (created or replaced
// by a rule) fall back to the same literal rendering Dense uses, in every
// style, so Generate never fails on a mutated tree.
func Generate(block *luaast.Block, src string, params Parameters) (string, error) {
	p := newPrinter(params.Style, src, params.columnSpan())
	p.writeBlock(block)
	return p.String(), nil
}

func (p *printer) token(tok lualex.Token, literal string) {
	if p.style == RetainLines && tokenValid(tok) {
		for _, t := range tok.LeadingTrivia {
			p.writeRaw(t.Text(p.src))
		}
		p.writeRaw(tok.Text(p.src))
		for _, t := range tok.TrailingTrivia {
			p.writeRaw(t.Text(p.src))
		}
		return
	}
	p.emit(literal)
}

func (p *printer) writeBlock(block *luaast.Block) {
	if block == nil {
		return
	}
	p.indent++
	for i, stmt := range block.Statements {
		if i > 0 || p.indent > 1 {
			p.newline()
		}
		p.writeStatement(stmt)
	}
	if block.Last != nil {
		if len(block.Statements) > 0 || p.indent > 1 {
			p.newline()
		}
		p.writeLastStatement(block.Last)
	}
	p.indent--
}

func (p *printer) writeLastStatement(last luaast.LastStatement) {
	switch s := last.(type) {
	case *luaast.ReturnStatement:
		p.token(s.ReturnToken, "return")
		for i, e := range s.Expressions {
			if i > 0 {
				p.emit(",")
				p.space()
			} else {
				p.space()
			}
			p.writeExpression(e)
		}
	case *luaast.BreakStatement:
		p.token(s.Token, "break")
	case *luaast.ContinueStatement:
		p.token(s.Token, "continue")
	}
}

func (p *printer) writeStatement(stmt luaast.Statement) {
	switch s := stmt.(type) {
	case *luaast.AssignStatement:
		for i, v := range s.Targets {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeVariable(v)
		}
		p.space()
		p.token(s.AssignToken, "=")
		p.space()
		for i, e := range s.Values {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeExpression(e)
		}
	case *luaast.CompoundAssignStatement:
		p.writeVariable(s.Target)
		p.space()
		p.token(s.Token, compoundOperatorSymbol(s.Operator))
		p.space()
		p.writeExpression(s.Value)
	case *luaast.LocalAssignStatement:
		p.token(s.LocalToken, "local")
		p.space()
		for i, name := range s.Names {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeIdentifier(name.Name)
			if name.Attribute != luaast.NoAttribute {
				p.emit("<")
				if name.Attribute == luaast.ConstAttribute {
					p.emit("const")
				} else {
					p.emit("close")
				}
				p.emit(">")
			}
			if name.Type != nil {
				p.emit(":")
				p.space()
				p.writeType(name.Type)
			}
		}
		if len(s.Values) > 0 {
			p.space()
			p.emit("=")
			p.space()
			for i, e := range s.Values {
				if i > 0 {
					p.emit(",")
					p.space()
				}
				p.writeExpression(e)
			}
		}
	case *luaast.LocalFunctionStatement:
		p.emit("local")
		p.space()
		p.emit("function")
		p.space()
		p.writeIdentifier(s.Name)
		p.writeFunctionBody(s.Body, false)
	case *luaast.FunctionStatement:
		p.token(s.FunctionToken, "function")
		p.space()
		p.writeIdentifier(s.Name.Base)
		for _, f := range s.Name.Fields {
			p.emit(".")
			p.writeIdentifier(f)
		}
		if s.Name.Method != nil {
			p.emit(":")
			p.writeIdentifier(s.Name.Method)
		}
		p.writeFunctionBody(s.Body, s.Name.Method != nil)
	case *luaast.IfStatement:
		for i, clause := range s.Clauses {
			if i == 0 {
				p.token(s.IfToken, "if")
			} else {
				p.newline()
				p.emit("elseif")
			}
			p.space()
			p.writeExpression(clause.Condition)
			p.space()
			p.emit("then")
			p.writeBlock(clause.Block)
		}
		if s.Else != nil {
			p.newline()
			p.emit("else")
			p.writeBlock(s.Else)
		}
		p.newline()
		p.emit("end")
	case *luaast.WhileStatement:
		p.token(s.WhileToken, "while")
		p.space()
		p.writeExpression(s.Condition)
		p.space()
		p.emit("do")
		p.writeBlock(s.Block)
		p.newline()
		p.emit("end")
	case *luaast.RepeatStatement:
		p.token(s.RepeatToken, "repeat")
		p.writeBlock(s.Block)
		p.newline()
		p.emit("until")
		p.space()
		p.writeExpression(s.Condition)
	case *luaast.NumericForStatement:
		p.token(s.ForToken, "for")
		p.space()
		p.writeIdentifier(s.Variable)
		p.emit("=")
		p.writeExpression(s.Start)
		p.emit(",")
		p.space()
		p.writeExpression(s.Stop)
		if s.Step != nil {
			p.emit(",")
			p.space()
			p.writeExpression(s.Step)
		}
		p.space()
		p.emit("do")
		p.writeBlock(s.Block)
		p.newline()
		p.emit("end")
	case *luaast.GenericForStatement:
		p.token(s.ForToken, "for")
		p.space()
		for i, n := range s.Names {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeIdentifier(n)
		}
		p.space()
		p.emit("in")
		p.space()
		for i, e := range s.Expressions {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeExpression(e)
		}
		p.space()
		p.emit("do")
		p.writeBlock(s.Block)
		p.newline()
		p.emit("end")
	case *luaast.DoStatement:
		p.token(s.DoToken, "do")
		p.writeBlock(s.Block)
		p.newline()
		p.emit("end")
	case *luaast.CallStatement:
		p.writeExpression(s.Call)
	case *luaast.TypeDeclarationStatement:
		if s.Exported {
			p.emit("export")
			p.space()
		}
		p.token(s.TypeToken, "type")
		p.space()
		p.writeIdentifier(s.Name)
		if len(s.Generics) > 0 {
			p.emit("<")
			for i, g := range s.Generics {
				if i > 0 {
					p.emit(",")
					p.space()
				}
				p.emit(g)
			}
			p.emit(">")
		}
		p.space()
		p.emit("=")
		p.space()
		p.writeType(s.Definition)
	}
}

func (p *printer) writeIdentifier(id *luaast.Identifier) {
	if id == nil {
		return
	}
	p.token(id.Token, id.Name)
}
