// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("remove_method_definition", func(options json.RawMessage) (Rule, error) {
		r := &RemoveMethodDefinition{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveMethodDefinition rewrites `function a.b:c(...)` to
// `function a.b.c(self, ...)`, moving the method name onto the field
// chain and making the implicit self parameter explicit.
type RemoveMethodDefinition struct{}

func (*RemoveMethodDefinition) Name() string { return "remove_method_definition" }

func (r *RemoveMethodDefinition) Process(block *luaast.Block, ctx *Context) []string {
	rewriteMethodDefinitions(block)
	return nil
}

func rewriteMethodDefinitions(block *luaast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		if fn, ok := stmt.(*luaast.FunctionStatement); ok && fn.Name.Method != nil {
			fn.Name.Fields = append(fn.Name.Fields, fn.Name.Method)
			fn.Name.Method = nil
			fn.Body.Parameters = append([]luaast.Parameter{{Name: luaast.NewIdentifier("self")}}, fn.Body.Parameters...)
		}
		for _, child := range luaast.ChildBlocks(stmt) {
			rewriteMethodDefinitions(child)
		}
	}
}
