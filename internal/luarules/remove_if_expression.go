// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("remove_if_expression", func(options json.RawMessage) (Rule, error) {
		r := &RemoveIfExpression{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveIfExpression lowers Luau's `if c then t [elseif c2 then t2] else
// f` expression to Lua 5.1-compatible `and`/`or` chains. When a branch's
// result is statically known to be truthy and can never be nil or false,
// it lowers to the short-circuit form `c and t or f`; otherwise it falls
// back to the safe encoding `(c and {t} or {f})[1]`, which preserves the
// case where t itself evaluates to nil or false, at the cost of
// allocating a one-element table per evaluation.
//
// A redesign using an immediately-invoked function expression to avoid
// that allocation was considered (see the distillation's open question)
// but is not implemented here.
type RemoveIfExpression struct{}

func (*RemoveIfExpression) Name() string { return "remove_if_expression" }

func (r *RemoveIfExpression) Process(block *luaast.Block, ctx *Context) []string {
	proc := &removeIfExpressionProcessor{}
	luavisit.New(proc).VisitBlock(block)
	return nil
}

type removeIfExpressionProcessor struct {
	luavisit.BaseProcessor
}

func (p *removeIfExpressionProcessor) ProcessExpression(expr *luaast.Expression) {
	ifExpr, ok := (*expr).(*luaast.IfExpression)
	if !ok {
		return
	}
	type branch struct {
		condition luaast.Expression
		result    luaast.Expression
	}
	branches := make([]branch, 0, 1+len(ifExpr.ElseIfs))
	branches = append(branches, branch{ifExpr.Condition, ifExpr.Then})
	for _, b := range ifExpr.ElseIfs {
		branches = append(branches, branch{b.Condition, b.Result})
	}
	result := ifExpr.Else
	for i := len(branches) - 1; i >= 0; i-- {
		result = lowerTernary(branches[i].condition, branches[i].result, result)
	}
	*expr = result
}

func lowerTernary(cond, then, els luaast.Expression) luaast.Expression {
	if isStaticallyTruthy(then) {
		return &luaast.BinaryExpression{
			Left:     &luaast.BinaryExpression{Left: cond, Operator: luaast.OpAnd, Right: then},
			Operator: luaast.OpOr,
			Right:    els,
		}
	}
	thenTable := &luaast.TableExpression{Entries: []luaast.TableEntry{{Kind: luaast.PositionalEntry, Value: then}}}
	elseTable := &luaast.TableExpression{Entries: []luaast.TableEntry{{Kind: luaast.PositionalEntry, Value: els}}}
	inner := &luaast.BinaryExpression{
		Left:     &luaast.BinaryExpression{Left: cond, Operator: luaast.OpAnd, Right: thenTable},
		Operator: luaast.OpOr,
		Right:    elseTable,
	}
	paren := &luaast.ParenthesizedExpression{Inner: inner}
	return &luaast.IndexVariable{Object: paren, Key: luaast.NewInt(1)}
}

// isStaticallyTruthy reports whether expr's literal form guarantees a
// truthy value that can never be nil or false, independent of the
// virtual evaluator (this check only needs to rule out nil/false, not
// compute the value).
func isStaticallyTruthy(expr luaast.Expression) bool {
	switch expr.(type) {
	case *luaast.TrueExpression, *luaast.NumberExpression, *luaast.StringExpression,
		*luaast.TableExpression, *luaast.FunctionExpression, *luaast.InterpolatedStringExpression:
		return true
	default:
		return false
	}
}
