// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"math"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaeval"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("compute_expression", func(options json.RawMessage) (Rule, error) {
		r := &ComputeExpression{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// ComputeExpression replaces any expression whose virtual evaluation
// yields a concrete, representable value with that literal. It never
// replaces an expression that has side effects, even partially (e.g. one
// operand of a binary expression calling a function): such an expression
// stays in place, since splitting out the side-effecting part while
// folding the rest would reorder evaluation. Side-effect-free
// sub-expressions inside it (e.g. `(1 + 2)` in `f() + (1 + 2)`) are still
// folded, as the visitor descends into every operand.
type ComputeExpression struct{}

func (*ComputeExpression) Name() string { return "compute_expression" }

func (r *ComputeExpression) Process(block *luaast.Block, ctx *Context) []string {
	proc := &computeExpressionProcessor{}
	luavisit.New(proc).VisitBlock(block)
	return nil
}

type computeExpressionProcessor struct {
	luavisit.BaseProcessor
}

func (p *computeExpressionProcessor) ProcessExpression(expr *luaast.Expression) {
	if luaeval.HasSideEffects(*expr) {
		return
	}
	switch (*expr).(type) {
	case *luaast.NilExpression, *luaast.TrueExpression, *luaast.FalseExpression,
		*luaast.NumberExpression, *luaast.StringExpression:
		// Already a literal; nothing to fold.
		return
	}
	state := luaeval.NewState()
	value := luaeval.Evaluate(*expr, state).First()
	if value.IsUnknown() {
		return
	}
	if literal, ok := literalFor(value); ok {
		*expr = literal
	}
}

// literalFor converts an evaluator value into an AST literal expression,
// when that value has a representable Lua literal form (tables and
// functions never do).
func literalFor(v luaeval.Value) (luaast.Expression, bool) {
	switch v.Kind {
	case luaeval.Nil:
		return luaast.NewNil(), true
	case luaeval.Boolean:
		return luaast.NewBool(v.Bool), true
	case luaeval.Number:
		if v.IsInt {
			return luaast.NewInt(v.Int), true
		}
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
			return nil, false
		}
		// Preserve signed zero: NewFloat stores the float64 bit pattern
		// directly, so -0.0 round-trips through the literal.
		return luaast.NewFloat(v.Num), true
	case luaeval.String:
		return luaast.NewString(v.Str), true
	default:
		return nil, false
	}
}
