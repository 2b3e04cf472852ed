// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaeval

import (
	"math"

	"lucerna.dev/lucerna/internal/luaast"
)

// whitelistedEngineFunctions names calls the evaluator knows are free of
// side effects (they don't touch I/O, globals, or tables observable
// outside their own arguments) but whose result it still cannot compute,
// matching the spec's "Roblox math library" example.
var whitelistedEngineFunctions = map[string]bool{
	"math.abs": true, "math.ceil": true, "math.floor": true, "math.max": true,
	"math.min": true, "math.sqrt": true, "math.huge": true, "math.pi": true,
	"tostring": true, "tonumber": true, "type": true,
}

// Evaluate computes the value of expr against state, returning a single
// value (most expressions) wrapped in a [Tuple]. A call expression or
// vararg may yield a multi-value, statically-unknown-length Tuple.
func Evaluate(expr luaast.Expression, state *State) Tuple {
	switch e := expr.(type) {
	case *luaast.NilExpression:
		return Single(NilValue)
	case *luaast.TrueExpression:
		return Single(BoolValue(true))
	case *luaast.FalseExpression:
		return Single(BoolValue(false))
	case *luaast.NumberExpression:
		if e.IsInteger {
			return Single(IntValue(e.IntegerValue))
		}
		return Single(FloatValue(e.Value))
	case *luaast.StringExpression:
		return Single(StringValue(e.Value))
	case *luaast.ParenthesizedExpression:
		return Single(Evaluate(e.Inner, state).First())
	case *luaast.VarargExpression:
		return Tuple{Open: true}
	case *luaast.Identifier:
		return Single(state.Read(e.Name))
	case *luaast.VariableExpression:
		return Single(evaluateVariable(e.Variable, state))
	case *luaast.BinaryExpression:
		return Single(evaluateBinary(e, state))
	case *luaast.UnaryExpression:
		return Single(evaluateUnary(e, state))
	case *luaast.IfExpression:
		cond := Evaluate(e.Condition, state).First()
		if cond.IsUnknown() {
			return Single(UnknownValue)
		}
		if cond.Truthy() {
			return Single(Evaluate(e.Then, state).First())
		}
		for _, b := range e.ElseIfs {
			c := Evaluate(b.Condition, state).First()
			if c.IsUnknown() {
				return Single(UnknownValue)
			}
			if c.Truthy() {
				return Single(Evaluate(b.Result, state).First())
			}
		}
		return Single(Evaluate(e.Else, state).First())
	case *luaast.CallExpression:
		return Tuple{Open: true, Values: []Value{UnknownValue}}
	case *luaast.TableExpression, *luaast.FunctionExpression, *luaast.InterpolatedStringExpression:
		return Single(UnknownValue)
	case *luaast.FieldVariable, *luaast.IndexVariable:
		return Single(evaluateVariable(expr.(luaast.Variable), state))
	default:
		return Single(UnknownValue)
	}
}

func evaluateVariable(v luaast.Variable, state *State) Value {
	switch x := v.(type) {
	case *luaast.Identifier:
		return state.Read(x.Name)
	case *luaast.FieldVariable:
		obj := Evaluate(x.Object, state).First()
		return readTableField(state, obj, x.Field.Name)
	case *luaast.IndexVariable:
		obj := Evaluate(x.Object, state).First()
		key := Evaluate(x.Key, state).First()
		if key.Kind != String {
			return UnknownValue
		}
		return readTableField(state, obj, key.Str)
	}
	return UnknownValue
}

func readTableField(state *State, obj Value, field string) Value {
	t := state.TableAt(obj)
	if t == nil || t.Opaque {
		return UnknownValue
	}
	if v, ok := t.Hash[field]; ok {
		return v
	}
	return NilValue
}

func evaluateUnary(e *luaast.UnaryExpression, state *State) Value {
	v := Evaluate(e.Operand, state).First()
	if v.IsUnknown() {
		return UnknownValue
	}
	switch e.Operator {
	case luaast.OpNot:
		return BoolValue(!v.Truthy())
	case luaast.OpNegate:
		if v.Kind != Number {
			return UnknownValue
		}
		if v.IsInt {
			return IntValue(-v.Int)
		}
		return FloatValue(negateZeroPreserving(v.Num))
	case luaast.OpLength:
		if v.Kind == String {
			return IntValue(int64(len(v.Str)))
		}
		return UnknownValue
	case luaast.OpBitNot:
		if v.Kind != Number || !v.IsInt {
			return UnknownValue
		}
		return IntValue(^v.Int)
	}
	return UnknownValue
}

func negateZeroPreserving(f float64) float64 {
	return -f
}

func signOf(f float64) float64 {
	if f == 0 {
		return 1
	}
	if f < 0 {
		return -1
	}
	return 1
}

func evaluateBinary(e *luaast.BinaryExpression, state *State) Value {
	// and/or short-circuit: the right side is only evaluated (and only
	// relevant to the result) when the left doesn't already decide it.
	if e.Operator == luaast.OpAnd {
		left := Evaluate(e.Left, state).First()
		if left.IsUnknown() {
			return UnknownValue
		}
		if !left.Truthy() {
			return left
		}
		return Evaluate(e.Right, state).First()
	}
	if e.Operator == luaast.OpOr {
		left := Evaluate(e.Left, state).First()
		if left.IsUnknown() {
			return UnknownValue
		}
		if left.Truthy() {
			return left
		}
		return Evaluate(e.Right, state).First()
	}

	left := Evaluate(e.Left, state).First()
	right := Evaluate(e.Right, state).First()
	if left.IsUnknown() || right.IsUnknown() {
		return UnknownValue
	}

	switch e.Operator {
	case luaast.OpConcat:
		ls, lok := asConcatString(left)
		rs, rok := asConcatString(right)
		if !lok || !rok {
			return UnknownValue
		}
		return StringValue(ls + rs)
	case luaast.OpEqual:
		return BoolValue(valuesEqual(left, right))
	case luaast.OpNotEqual:
		return BoolValue(!valuesEqual(left, right))
	}

	if left.Kind == Number && right.Kind == Number {
		return evaluateNumericBinary(e.Operator, left, right)
	}
	if left.Kind == String && right.Kind == String {
		switch e.Operator {
		case luaast.OpLessThan:
			return BoolValue(left.Str < right.Str)
		case luaast.OpLessEqual:
			return BoolValue(left.Str <= right.Str)
		case luaast.OpGreaterThan:
			return BoolValue(left.Str > right.Str)
		case luaast.OpGreaterEqual:
			return BoolValue(left.Str >= right.Str)
		}
	}
	return UnknownValue
}

func asConcatString(v Value) (string, bool) {
	switch v.Kind {
	case String:
		return v.Str, true
	case Number:
		return Value{Kind: Number, IsInt: v.IsInt, Int: v.Int, Num: v.Num}.String(), true
	default:
		return "", false
	}
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Nil:
		return true
	case Boolean:
		return a.Bool == b.Bool
	case Number:
		return a.Num == b.Num
	case String:
		return a.Str == b.Str
	case Table:
		return a.TableID == b.TableID
	default:
		return false
	}
}

func evaluateNumericBinary(op luaast.BinaryOperator, left, right Value) Value {
	bothInt := left.IsInt && right.IsInt
	switch op {
	case luaast.OpAdd:
		if bothInt {
			return IntValue(left.Int + right.Int)
		}
		return FloatValue(left.Num + right.Num)
	case luaast.OpSub:
		if bothInt {
			return IntValue(left.Int - right.Int)
		}
		return FloatValue(left.Num - right.Num)
	case luaast.OpMul:
		if bothInt {
			return IntValue(left.Int * right.Int)
		}
		return FloatValue(left.Num * right.Num)
	case luaast.OpDiv:
		return FloatValue(left.Num / right.Num)
	case luaast.OpFloorDiv:
		if bothInt {
			if right.Int == 0 {
				return UnknownValue
			}
			return IntValue(floorDivInt(left.Int, right.Int))
		}
		return FloatValue(math.Floor(left.Num / right.Num))
	case luaast.OpMod:
		if bothInt {
			if right.Int == 0 {
				return UnknownValue
			}
			return IntValue(modInt(left.Int, right.Int))
		}
		return FloatValue(left.Num - math.Floor(left.Num/right.Num)*right.Num)
	case luaast.OpPow:
		return FloatValue(math.Pow(left.Num, right.Num))
	case luaast.OpLessThan:
		return BoolValue(left.Num < right.Num)
	case luaast.OpLessEqual:
		return BoolValue(left.Num <= right.Num)
	case luaast.OpGreaterThan:
		return BoolValue(left.Num > right.Num)
	case luaast.OpGreaterEqual:
		return BoolValue(left.Num >= right.Num)
	case luaast.OpBitAnd:
		if bothInt {
			return IntValue(left.Int & right.Int)
		}
	case luaast.OpBitOr:
		if bothInt {
			return IntValue(left.Int | right.Int)
		}
	case luaast.OpBitXor:
		if bothInt {
			return IntValue(left.Int ^ right.Int)
		}
	case luaast.OpShiftLeft:
		if bothInt {
			return IntValue(left.Int << uint(right.Int))
		}
	case luaast.OpShiftRight:
		if bothInt {
			return IntValue(int64(uint64(left.Int) >> uint(right.Int)))
		}
	}
	return UnknownValue
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func modInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

// HasSideEffects reports whether evaluating expr could perform an
// observable effect (a function call other than a whitelisted engine
// function, since calls can do arbitrary I/O or mutate shared state).
// Rules that would otherwise duplicate or drop an expression must check
// this first and, if true, hoist it into a fresh local evaluated exactly
// once instead.
func HasSideEffects(expr luaast.Expression) bool {
	switch e := expr.(type) {
	case *luaast.CallExpression:
		if name, ok := calleeName(e); ok && whitelistedEngineFunctions[name] {
			return hasSideEffectsIn(e.Arguments)
		}
		return true
	case *luaast.ParenthesizedExpression:
		return HasSideEffects(e.Inner)
	case *luaast.BinaryExpression:
		return HasSideEffects(e.Left) || HasSideEffects(e.Right)
	case *luaast.UnaryExpression:
		return HasSideEffects(e.Operand)
	case *luaast.IfExpression:
		if HasSideEffects(e.Condition) || HasSideEffects(e.Then) || HasSideEffects(e.Else) {
			return true
		}
		for _, b := range e.ElseIfs {
			if HasSideEffects(b.Condition) || HasSideEffects(b.Result) {
				return true
			}
		}
		return false
	case *luaast.TableExpression:
		for _, entry := range e.Entries {
			if entry.Key != nil && HasSideEffects(entry.Key) {
				return true
			}
			if HasSideEffects(entry.Value) {
				return true
			}
		}
		return false
	case *luaast.VariableExpression:
		return variableHasSideEffects(e.Variable)
	case *luaast.Identifier:
		return false
	case *luaast.FieldVariable, *luaast.IndexVariable:
		return variableHasSideEffects(expr.(luaast.Variable))
	case *luaast.InterpolatedStringExpression:
		for _, seg := range e.Segments {
			if seg.Expression != nil && HasSideEffects(seg.Expression) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func variableHasSideEffects(v luaast.Variable) bool {
	switch x := v.(type) {
	case *luaast.FieldVariable:
		return HasSideEffects(x.Object)
	case *luaast.IndexVariable:
		return HasSideEffects(x.Object) || HasSideEffects(x.Key)
	default:
		return false
	}
}

func hasSideEffectsIn(arg luaast.Argument) bool {
	switch a := arg.(type) {
	case *luaast.ExpressionListArgument:
		for _, item := range a.Items {
			if HasSideEffects(item) {
				return true
			}
		}
		return false
	case *luaast.TableArgument:
		return HasSideEffects(a.Table)
	default:
		return false
	}
}

func calleeName(call *luaast.CallExpression) (string, bool) {
	if call.Method != "" {
		return "", false
	}
	switch c := call.Callee.(type) {
	case *luaast.Identifier:
		return c.Name, true
	case *luaast.FieldVariable:
		if base, ok := c.Object.(*luaast.Identifier); ok {
			return base.Name + "." + c.Field.Name, true
		}
	}
	return "", false
}
