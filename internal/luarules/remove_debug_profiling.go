// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaeval"
)

func init() {
	Register("remove_debug_profiling", func(options json.RawMessage) (Rule, error) {
		r := &RemoveDebugProfiling{PreserveArgumentsSideEffects: true}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveDebugProfiling strips `debug.profilebegin(...)` and
// `debug.profileend()` call statements, turning each into an empty `do
// end` block. When PreserveArgumentsSideEffects is true (the default)
// and an argument expression has side effects, that expression is kept
// as a standalone statement instead of being dropped along with the
// call. The whole file is skipped if anything locally rebinds the name
// `debug`.
type RemoveDebugProfiling struct {
	PreserveArgumentsSideEffects bool `json:"preserve_arguments_side_effects,omitempty"`
}

func (*RemoveDebugProfiling) Name() string { return "remove_debug_profiling" }

func (r *RemoveDebugProfiling) Process(block *luaast.Block, ctx *Context) []string {
	if declaresLocalName(block, "debug") {
		return nil
	}
	removeDebugProfilingCalls(block, r.PreserveArgumentsSideEffects)
	return nil
}

func removeDebugProfilingCalls(block *luaast.Block, preserveSideEffects bool) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		next = append(next, debugProfilingReplacement(stmt, preserveSideEffects)...)
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			removeDebugProfilingCalls(child, preserveSideEffects)
		}
	}
}

func debugProfilingReplacement(stmt luaast.Statement, preserveSideEffects bool) []luaast.Statement {
	call, ok := callStatementMethod(stmt, "debug", "profilebegin", "profileend")
	if !ok {
		return []luaast.Statement{stmt}
	}
	if preserveSideEffects {
		var kept []luaast.Statement
		for _, item := range argumentsOf(call.Arguments) {
			if luaeval.HasSideEffects(item) {
				if sideCall, ok := item.(*luaast.CallExpression); ok {
					kept = append(kept, &luaast.CallStatement{Call: sideCall})
				} else {
					kept = append(kept, localAssign("_", item))
				}
			}
		}
		if len(kept) > 0 {
			return kept
		}
	}
	return []luaast.Statement{&luaast.DoStatement{Block: &luaast.Block{}}}
}

// callStatementMethod reports whether stmt is a bare `object.name(...)`
// call statement where object is the identifier objectName and name is
// one of fieldNames, returning the call expression if so.
func callStatementMethod(stmt luaast.Statement, objectName string, fieldNames ...string) (*luaast.CallExpression, bool) {
	cs, ok := stmt.(*luaast.CallStatement)
	if !ok || cs.Call.Method != "" {
		return nil, false
	}
	field, ok := cs.Call.Callee.(*luaast.FieldVariable)
	if !ok {
		return nil, false
	}
	obj, ok := field.Object.(*luaast.Identifier)
	if !ok || obj.Name != objectName {
		return nil, false
	}
	for _, name := range fieldNames {
		if field.Field.Name == name {
			return cs.Call, true
		}
	}
	return nil, false
}
