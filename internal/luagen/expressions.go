// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luagen

import "lucerna.dev/lucerna/internal/luaast"

func (p *printer) writeExpression(expr luaast.Expression) {
	switch e := expr.(type) {
	case *luaast.NilExpression:
		p.token(e.Token, "nil")
	case *luaast.TrueExpression:
		p.token(e.Token, "true")
	case *luaast.FalseExpression:
		p.token(e.Token, "false")
	case *luaast.NumberExpression:
		p.token(e.Token, renderNumber(e))
	case *luaast.StringExpression:
		p.token(e.Token, renderString(e))
	case *luaast.InterpolatedStringExpression:
		p.emit("`")
		for _, seg := range e.Segments {
			if seg.Expression == nil {
				p.writeRaw(seg.Literal)
			} else {
				p.writeRaw("{")
				p.writeExpression(seg.Expression)
				p.writeRaw("}")
			}
		}
		p.writeRaw("`")
	case *luaast.VarargExpression:
		p.token(e.Token, "...")
	case *luaast.ParenthesizedExpression:
		p.token(e.OpenToken, "(")
		p.writeExpression(e.Inner)
		p.token(e.CloseToken, ")")
	case *luaast.BinaryExpression:
		p.writeBinaryOperand(e, e.Left, false)
		p.space()
		p.token(e.Token, binaryOperatorSymbol(e.Operator))
		p.space()
		p.writeBinaryOperand(e, e.Right, true)
	case *luaast.UnaryExpression:
		p.token(e.Token, unaryOperatorSymbol(e.Operator))
		if e.Operator == luaast.OpNot {
			p.space()
		}
		p.writeExpressionParenIfLower(e.Operand, unaryPrecedence)
	case *luaast.IfExpression:
		p.emit("if")
		p.space()
		p.writeExpression(e.Condition)
		p.space()
		p.emit("then")
		p.space()
		p.writeExpression(e.Then)
		for _, b := range e.ElseIfs {
			p.space()
			p.emit("elseif")
			p.space()
			p.writeExpression(b.Condition)
			p.space()
			p.emit("then")
			p.space()
			p.writeExpression(b.Result)
		}
		p.space()
		p.emit("else")
		p.space()
		p.writeExpression(e.Else)
	case *luaast.FunctionExpression:
		p.token(e.FunctionToken, "function")
		p.writeFunctionBody(e.Body, false)
	case *luaast.CallExpression:
		p.writePrefix(e.Callee)
		if e.Method != "" {
			p.token(e.ColonToken, ":")
			p.emit(e.Method)
		}
		p.writeArgument(e.Arguments)
	case *luaast.VariableExpression:
		p.writeVariable(e.Variable)
	case *luaast.TableExpression:
		p.writeTable(e)
	case *luaast.Identifier:
		p.writeIdentifier(e)
	case *luaast.FieldVariable, *luaast.IndexVariable:
		p.writeVariable(expr.(luaast.Variable))
	}
}

// writePrefix writes a PrefixExpression, which is always also an
// Expression in this tree's shape.
func (p *printer) writePrefix(pe luaast.PrefixExpression) {
	p.writeExpression(pe)
}

func (p *printer) writeVariable(v luaast.Variable) {
	switch x := v.(type) {
	case *luaast.Identifier:
		p.writeIdentifier(x)
	case *luaast.FieldVariable:
		p.writePrefix(x.Object)
		p.token(x.DotToken, ".")
		p.writeIdentifier(x.Field)
	case *luaast.IndexVariable:
		p.writePrefix(x.Object)
		p.token(x.OpenToken, "[")
		p.writeExpression(x.Key)
		p.token(x.CloseToken, "]")
	}
}

func (p *printer) writeArgument(arg luaast.Argument) {
	switch a := arg.(type) {
	case *luaast.ExpressionListArgument:
		p.token(a.OpenToken, "(")
		for i, item := range a.Items {
			if i > 0 {
				p.emit(",")
				p.space()
			}
			p.writeExpression(item)
		}
		p.token(a.CloseToken, ")")
	case *luaast.TableArgument:
		p.writeTable(a.Table)
	case *luaast.StringArgument:
		p.writeExpression(a.String)
	}
}

func (p *printer) writeTable(t *luaast.TableExpression) {
	p.token(t.OpenToken, "{")
	for i, entry := range t.Entries {
		if i > 0 {
			p.emit(",")
			p.space()
		}
		switch entry.Kind {
		case luaast.NamedEntry:
			p.emit(entry.Name)
			p.space()
			p.emit("=")
			p.space()
			p.writeExpression(entry.Value)
		case luaast.IndexedEntry:
			p.emit("[")
			p.writeExpression(entry.Key)
			p.emit("]")
			p.space()
			p.emit("=")
			p.space()
			p.writeExpression(entry.Value)
		default:
			p.writeExpression(entry.Value)
		}
	}
	p.token(t.CloseToken, "}")
}

// ---- precedence-aware parenthesization for freshly-built expressions ----
//
// Position in the tree (not a retained precedence value, per the
// invariant in internal/luaast) drives whether an operand needs explicit
// parens when it wasn't already wrapped by a ParenthesizedExpression.

const unaryPrecedence = 12

func binaryPrecedence(op luaast.BinaryOperator) int {
	switch op {
	case luaast.OpOr:
		return 1
	case luaast.OpAnd:
		return 2
	case luaast.OpLessThan, luaast.OpGreaterThan, luaast.OpLessEqual, luaast.OpGreaterEqual, luaast.OpNotEqual, luaast.OpEqual:
		return 3
	case luaast.OpBitOr:
		return 4
	case luaast.OpBitXor:
		return 5
	case luaast.OpBitAnd:
		return 6
	case luaast.OpShiftLeft, luaast.OpShiftRight:
		return 7
	case luaast.OpConcat:
		return 9
	case luaast.OpAdd, luaast.OpSub:
		return 10
	case luaast.OpMul, luaast.OpDiv, luaast.OpFloorDiv, luaast.OpMod:
		return 11
	case luaast.OpPow:
		return 14
	default:
		return 0
	}
}

func expressionPrecedence(expr luaast.Expression) (int, bool) {
	switch e := expr.(type) {
	case *luaast.BinaryExpression:
		return binaryPrecedence(e.Operator), true
	case *luaast.UnaryExpression:
		return unaryPrecedence, true
	default:
		return 0, false
	}
}

// writeBinaryOperand parenthesizes an already-present ParenthesizedExpression
// transparently (it writes its own parens) and otherwise inserts explicit
// parens only when the operand is a lower-precedence binary expression
// than the parent, or (on the right side) equal precedence for a
// non-associative/left-associative operator.
func (p *printer) writeBinaryOperand(parent *luaast.BinaryExpression, operand luaast.Expression, isRight bool) {
	parentPrec := binaryPrecedence(parent.Operator)
	if childPrec, ok := expressionPrecedence(operand); ok {
		needsParens := childPrec < parentPrec ||
			(childPrec == parentPrec && isRight && parent.Operator != luaast.OpConcat && parent.Operator != luaast.OpPow)
		if needsParens {
			p.emit("(")
			p.writeExpression(operand)
			p.emit(")")
			return
		}
	}
	p.writeExpression(operand)
}

func (p *printer) writeExpressionParenIfLower(expr luaast.Expression, minPrec int) {
	if childPrec, ok := expressionPrecedence(expr); ok && childPrec < minPrec {
		p.emit("(")
		p.writeExpression(expr)
		p.emit(")")
		return
	}
	p.writeExpression(expr)
}
