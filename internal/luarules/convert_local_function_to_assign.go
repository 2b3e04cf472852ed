// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("convert_local_function_to_assign", func(options json.RawMessage) (Rule, error) {
		r := &ConvertLocalFunctionToAssign{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// ConvertLocalFunctionToAssign rewrites `local function f(...) ... end`
// into `local f = function(...) ... end`. It skips any function whose
// body refers back to its own name, since `local function` binds the
// name before the body runs (enabling self-recursion) while a plain
// `local` assignment only binds it after the value expression is built.
type ConvertLocalFunctionToAssign struct{}

func (*ConvertLocalFunctionToAssign) Name() string { return "convert_local_function_to_assign" }

func (r *ConvertLocalFunctionToAssign) Process(block *luaast.Block, ctx *Context) []string {
	rewriteLocalFunctions(block)
	return nil
}

func rewriteLocalFunctions(block *luaast.Block) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		next = append(next, convertLocalFunctionStatement(stmt))
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			rewriteLocalFunctions(child)
		}
	}
}

func convertLocalFunctionStatement(stmt luaast.Statement) luaast.Statement {
	fn, ok := stmt.(*luaast.LocalFunctionStatement)
	if !ok {
		return stmt
	}
	if blockReferencesName(fn.Body.Block, fn.Name.Name) {
		return stmt
	}
	return &luaast.LocalAssignStatement{
		Names:  []luaast.LocalName{{Name: fn.Name}},
		Values: []luaast.Expression{&luaast.FunctionExpression{Body: fn.Body}},
	}
}
