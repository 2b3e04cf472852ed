// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("remove_method_call", func(options json.RawMessage) (Rule, error) {
		r := &RemoveMethodCall{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveMethodCall rewrites `obj:method(...)` to `obj.method(obj, ...)`.
// It only applies when the object, once any surrounding parentheses are
// stripped, is a bare identifier: indexing it twice (field/index/call
// objects) would evaluate side effects more than once, so those calls
// are left untouched.
type RemoveMethodCall struct{}

func (*RemoveMethodCall) Name() string { return "remove_method_call" }

func (r *RemoveMethodCall) Process(block *luaast.Block, ctx *Context) []string {
	proc := &removeMethodCallProcessor{}
	luavisit.New(proc).VisitBlock(block)
	return nil
}

type removeMethodCallProcessor struct {
	luavisit.BaseProcessor
}

func (p *removeMethodCallProcessor) ProcessExpression(expr *luaast.Expression) {
	call, ok := (*expr).(*luaast.CallExpression)
	if !ok || call.Method == "" {
		return
	}
	ident, ok := unwrapParens(call.Callee).(*luaast.Identifier)
	if !ok {
		return
	}
	args := argumentsOf(call.Arguments)
	if args == nil {
		return
	}
	self := &luaast.Identifier{Name: ident.Name}
	items := make([]luaast.Expression, 0, len(args)+1)
	items = append(items, self)
	items = append(items, args...)
	call.Callee = &luaast.FieldVariable{Object: ident, Field: luaast.NewIdentifier(call.Method)}
	call.Method = ""
	call.Arguments = &luaast.ExpressionListArgument{Items: items}
}

// unwrapParens strips any number of surrounding ParenthesizedExpression
// layers, returning the innermost expression.
func unwrapParens(expr luaast.Expression) luaast.Expression {
	for {
		paren, ok := expr.(*luaast.ParenthesizedExpression)
		if !ok {
			return expr
		}
		expr = paren.Inner
	}
}

// argumentsOf normalizes a call's Argument into an expression list,
// returning nil if the shape can't be represented as one (it always
// can: table and string arguments become their single expression).
func argumentsOf(arg luaast.Argument) []luaast.Expression {
	switch a := arg.(type) {
	case *luaast.ExpressionListArgument:
		return append(make([]luaast.Expression, 0, len(a.Items)), a.Items...)
	case *luaast.TableArgument:
		return []luaast.Expression{a.Table}
	case *luaast.StringArgument:
		return []luaast.Expression{a.String}
	default:
		return nil
	}
}
