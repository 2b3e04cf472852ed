// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("remove_generalized_iteration", func(options json.RawMessage) (Rule, error) {
		r := &RemoveGeneralizedIteration{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveGeneralizedIteration lowers Luau's generalized iteration
// (`for k, v in t do ... end`, which iterates t directly through its
// `__iter` metamethod or a default equivalent to `pairs`) to the explicit
// `for k, v in pairs(t) do ... end` form every Lua version understands.
// Only a single-expression clause whose expression is not already a call
// is rewritten: `for k, v in pairs(t) do` and `for k, v in next, t do` are
// left untouched, since they already name their iterator explicitly.
type RemoveGeneralizedIteration struct{}

func (*RemoveGeneralizedIteration) Name() string { return "remove_generalized_iteration" }

func (r *RemoveGeneralizedIteration) Process(block *luaast.Block, ctx *Context) []string {
	wrapGeneralizedIteration(block)
	return nil
}

func wrapGeneralizedIteration(block *luaast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		loop, ok := stmt.(*luaast.GenericForStatement)
		if !ok || len(loop.Expressions) != 1 {
			continue
		}
		if _, isCall := loop.Expressions[0].(*luaast.CallExpression); isCall {
			continue
		}
		loop.Expressions[0] = &luaast.CallExpression{
			Callee:    luaast.NewIdentifier("pairs"),
			Arguments: &luaast.ExpressionListArgument{Items: []luaast.Expression{loop.Expressions[0]}},
		}
	}
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			wrapGeneralizedIteration(child)
		}
	}
}
