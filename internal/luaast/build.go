// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaast

// This file collects small constructors used by rules (internal/luarules)
// to build replacement nodes that carry no source position, matching the
// style of the teacher's newXDesc family of constructors.

// NewIdentifier returns an [Identifier] with no source position.
func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

// NewNil returns a [NilExpression] with no source position.
func NewNil() *NilExpression { return &NilExpression{} }

// NewBool returns a [TrueExpression] or [FalseExpression].
func NewBool(v bool) Expression {
	if v {
		return &TrueExpression{}
	}
	return &FalseExpression{}
}

// NewInt returns a [NumberExpression] for an integer value.
func NewInt(v int64) *NumberExpression {
	return &NumberExpression{Value: float64(v), IsInteger: true, IntegerValue: v}
}

// NewFloat returns a [NumberExpression] for a floating-point value.
func NewFloat(v float64) *NumberExpression {
	return &NumberExpression{Value: v}
}

// NewString returns a [StringExpression] with double-quote delimiting.
func NewString(v string) *StringExpression {
	return &StringExpression{Value: v, Delimiter: DoubleQuoteDelimiter}
}

// NewVariableExpression wraps v for use in expression position.
func NewVariableExpression(v Variable) *VariableExpression {
	return &VariableExpression{Variable: v}
}

// NewReturn returns a [ReturnStatement] with the given expressions.
func NewReturn(exprs ...Expression) *ReturnStatement {
	return &ReturnStatement{Expressions: exprs}
}

// NewCallStatement wraps a call expression for use as a statement.
func NewCallStatement(call *CallExpression) *CallStatement {
	return &CallStatement{Call: call}
}

// NewDo wraps block in a `do ... end` statement.
func NewDo(block *Block) *DoStatement {
	return &DoStatement{Block: block}
}

// NewBlock returns a block with the given statements and no last statement.
func NewBlock(stmts ...Statement) *Block {
	return &Block{Statements: stmts}
}
