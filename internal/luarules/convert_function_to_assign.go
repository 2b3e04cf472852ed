// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("convert_function_to_assign", func(options json.RawMessage) (Rule, error) {
		r := &ConvertFunctionToAssign{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// ConvertFunctionToAssign rewrites `function a.b:c(...) ... end` into
// `a.b.c = function(self, ...) ... end`, turning the function-statement
// sugar into a plain assignment of a function expression. Method
// definitions gain an explicit leading self parameter the same way
// RemoveMethodDefinition does.
type ConvertFunctionToAssign struct{}

func (*ConvertFunctionToAssign) Name() string { return "convert_function_to_assign" }

func (r *ConvertFunctionToAssign) Process(block *luaast.Block, ctx *Context) []string {
	rewriteFunctionStatements(block)
	return nil
}

func rewriteFunctionStatements(block *luaast.Block) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		next = append(next, convertFunctionStatement(stmt))
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			rewriteFunctionStatements(child)
		}
	}
}

func convertFunctionStatement(stmt luaast.Statement) luaast.Statement {
	fn, ok := stmt.(*luaast.FunctionStatement)
	if !ok {
		return stmt
	}
	body := fn.Body
	var target luaast.Variable = fn.Name.Base
	for _, field := range fn.Name.Fields {
		target = &luaast.FieldVariable{Object: target.(luaast.PrefixExpression), Field: field}
	}
	if fn.Name.Method != nil {
		target = &luaast.FieldVariable{Object: target.(luaast.PrefixExpression), Field: fn.Name.Method}
		body.Parameters = append([]luaast.Parameter{{Name: luaast.NewIdentifier("self")}}, body.Parameters...)
	}
	return &luaast.AssignStatement{
		Targets: []luaast.Variable{target},
		Values:  []luaast.Expression{&luaast.FunctionExpression{Body: body}},
	}
}
