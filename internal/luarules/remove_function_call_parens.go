// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("remove_function_call_parens", func(options json.RawMessage) (Rule, error) {
		r := &RemoveFunctionCallParens{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveFunctionCallParens rewrites `f('str')` to `f'str'` and
// `f({...})` to `f{...}`, using Lua's single-argument call sugar when a
// call's only argument is a plain string or table literal.
type RemoveFunctionCallParens struct{}

func (*RemoveFunctionCallParens) Name() string { return "remove_function_call_parens" }

func (r *RemoveFunctionCallParens) Process(block *luaast.Block, ctx *Context) []string {
	proc := &removeCallParensProcessor{}
	luavisit.New(proc).VisitBlock(block)
	return nil
}

type removeCallParensProcessor struct {
	luavisit.BaseProcessor
}

func (p *removeCallParensProcessor) ProcessExpression(expr *luaast.Expression) {
	call, ok := (*expr).(*luaast.CallExpression)
	if !ok {
		return
	}
	list, ok := call.Arguments.(*luaast.ExpressionListArgument)
	if !ok || len(list.Items) != 1 {
		return
	}
	switch arg := list.Items[0].(type) {
	case *luaast.StringExpression:
		call.Arguments = &luaast.StringArgument{String: arg}
	case *luaast.TableExpression:
		call.Arguments = &luaast.TableArgument{Table: arg}
	}
}
