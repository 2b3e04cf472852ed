// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaast

// Expression is implemented by every expression variant.
type Expression interface {
	Node
	expressionNode()
}

// PrefixExpression is implemented by the expressions that may be called,
// indexed, or field-accessed: variables, calls, and parenthesized
// expressions. It mirrors Lua's grammar distinction between "prefixexp"
// and general "exp".
type PrefixExpression interface {
	Expression
	prefixExpression()
}

// NilExpression is the literal `nil`.
type NilExpression struct{ Token Token }

func (*NilExpression) nodeKind() string { return "NilExpression" }
func (*NilExpression) expressionNode()  {}

// TrueExpression is the literal `true`.
type TrueExpression struct{ Token Token }

func (*TrueExpression) nodeKind() string { return "TrueExpression" }
func (*TrueExpression) expressionNode()  {}

// FalseExpression is the literal `false`.
type FalseExpression struct{ Token Token }

func (*FalseExpression) nodeKind() string { return "FalseExpression" }
func (*FalseExpression) expressionNode()  {}

// NumberRepresentation records how a numeral was written in source, so
// that regenerating it (or a folded replacement) can preserve style.
type NumberRepresentation int

const (
	DecimalRepresentation NumberRepresentation = iota
	HexRepresentation
	BinaryRepresentation
)

// NumberExpression is a numeric literal. Value holds its numeric value
// (and IntegerValue too, when IsInteger); the literal's original spelling,
// including underscores and exponent case, is kept only by Token.
type NumberExpression struct {
	Value          float64
	IsInteger      bool
	IntegerValue   int64
	Representation NumberRepresentation
	Token          Token
}

func (*NumberExpression) nodeKind() string { return "NumberExpression" }
func (*NumberExpression) expressionNode()  {}

// StringDelimiter records which quoting style a string literal used.
type StringDelimiter int

const (
	DoubleQuoteDelimiter StringDelimiter = iota
	SingleQuoteDelimiter
	LongBracketDelimiter
)

// StringExpression is a string literal. Value holds the decoded string
// value; Delimiter records how to re-quote it if regenerated without a
// rewrite.
type StringExpression struct {
	Value         string
	Delimiter     StringDelimiter
	LongBracketEq int // number of `=` in a long-bracket delimiter
	Token         Token
}

func (*StringExpression) nodeKind() string { return "StringExpression" }
func (*StringExpression) expressionNode()  {}

// InterpolatedStringSegment is one piece of an interpolated string: either
// literal text or an embedded expression.
type InterpolatedStringSegment struct {
	Literal    string // valid when Expression == nil
	Expression Expression
}

// InterpolatedStringExpression is a Luau interpolated string
// (`` `a{b}c` ``), modeled as an ordered list of literal/expression
// segments.
type InterpolatedStringExpression struct {
	Segments []InterpolatedStringSegment
	Token    Token
}

func (*InterpolatedStringExpression) nodeKind() string { return "InterpolatedStringExpression" }
func (*InterpolatedStringExpression) expressionNode()  {}

// VarargExpression is the literal `...`.
type VarargExpression struct{ Token Token }

func (*VarargExpression) nodeKind() string { return "VarargExpression" }
func (*VarargExpression) expressionNode()  {}

// ParenthesizedExpression forces single-value context, truncating a
// multi-value inner expression to its first result. It must never be
// optimized away by a rule unless that semantic is explicitly preserved
// another way.
type ParenthesizedExpression struct {
	OpenToken  Token
	Inner      Expression
	CloseToken Token
}

func (*ParenthesizedExpression) nodeKind() string { return "ParenthesizedExpression" }
func (*ParenthesizedExpression) expressionNode()  {}
func (*ParenthesizedExpression) prefixExpression() {}

// BinaryOperator enumerates Lua/Luau binary operators.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpConcat
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessEqual
	OpGreaterThan
	OpGreaterEqual
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
)

// BinaryExpression is encoded as a single operator with a left and right
// operand; precedence is resolved by the parser and is not retained in
// the tree, so generators must restore correct parenthesization.
type BinaryExpression struct {
	Left     Expression
	Operator BinaryOperator
	Token    Token
	Right    Expression
}

func (*BinaryExpression) nodeKind() string { return "BinaryExpression" }
func (*BinaryExpression) expressionNode()  {}

// UnaryOperator enumerates Lua/Luau unary operators.
type UnaryOperator int

const (
	OpNegate UnaryOperator = iota
	OpNot
	OpLength
	OpBitNot
)

// UnaryExpression applies a single prefix operator to an operand.
type UnaryExpression struct {
	Operator UnaryOperator
	Token    Token
	Operand  Expression
}

func (*UnaryExpression) nodeKind() string { return "UnaryExpression" }
func (*UnaryExpression) expressionNode()  {}

// IfExpressionBranch is one `elseif`/condition branch of an [IfExpression].
type IfExpressionBranch struct {
	Condition Expression
	Result    Expression
}

// IfExpression is Luau's `if c then t elseif c2 then t2 else f` expression
// form.
type IfExpression struct {
	Condition Expression
	Then      Expression
	ElseIfs   []IfExpressionBranch
	Else      Expression
}

func (*IfExpression) nodeKind() string { return "IfExpression" }
func (*IfExpression) expressionNode()  {}

// FunctionExpression is an anonymous `function ... end` expression,
// wrapping a [FunctionBody].
type FunctionExpression struct {
	FunctionToken Token
	Body          *FunctionBody
}

func (*FunctionExpression) nodeKind() string { return "FunctionExpression" }
func (*FunctionExpression) expressionNode()  {}

// Argument is implemented by the three call-argument shapes Lua permits:
// a parenthesized expression list, a single table constructor, or a
// single string literal.
type Argument interface {
	Node
	argumentNode()
}

// ExpressionListArgument is `f(a, b, c)`.
type ExpressionListArgument struct {
	OpenToken  Token
	Items      []Expression
	CloseToken Token
}

func (*ExpressionListArgument) nodeKind() string { return "ExpressionListArgument" }
func (*ExpressionListArgument) argumentNode()    {}

// TableArgument is `f{...}`.
type TableArgument struct{ Table *TableExpression }

func (*TableArgument) nodeKind() string { return "TableArgument" }
func (*TableArgument) argumentNode()    {}

// StringArgument is `f"..."`.
type StringArgument struct{ String *StringExpression }

func (*StringArgument) nodeKind() string { return "StringArgument" }
func (*StringArgument) argumentNode()    {}

// CallExpression is a function or method call used as an expression.
// Method is non-empty for `obj:method(...)` calls.
type CallExpression struct {
	Callee     PrefixExpression
	ColonToken Token  // valid when Method != ""
	Method     string // empty for a plain call
	Arguments  Argument
}

func (*CallExpression) nodeKind() string  { return "CallExpression" }
func (*CallExpression) expressionNode()   {}
func (*CallExpression) prefixExpression() {}

// VariableExpression wraps a [Variable] for use in expression position.
type VariableExpression struct{ Variable Variable }

func (*VariableExpression) nodeKind() string  { return "VariableExpression" }
func (*VariableExpression) expressionNode()   {}
func (*VariableExpression) prefixExpression() {}

// TableEntryKind discriminates the three forms of [TableEntry].
type TableEntryKind int

const (
	// PositionalEntry is a bare value: `{1, 2, 3}`.
	PositionalEntry TableEntryKind = iota
	// NamedEntry is `name = value`.
	NamedEntry
	// IndexedEntry is `[key] = value`.
	IndexedEntry
)

// TableEntry is one element of a [TableExpression].
type TableEntry struct {
	Kind  TableEntryKind
	Name  string     // valid when Kind == NamedEntry
	Key   Expression // valid when Kind == IndexedEntry
	Value Expression
}

// TableExpression is a table constructor with an ordered list of entries.
type TableExpression struct {
	OpenToken  Token
	Entries    []TableEntry
	CloseToken Token
}

func (*TableExpression) nodeKind() string { return "TableExpression" }
func (*TableExpression) expressionNode()  {}
