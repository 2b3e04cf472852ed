// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaeval"
)

func init() {
	Register("remove_assertions", func(options json.RawMessage) (Rule, error) {
		r := &RemoveAssertions{PreserveArgumentsSideEffects: true}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveAssertions strips bare `assert(...)` call statements, the same
// way RemoveDebugProfiling strips `debug.profilebegin`/`profileend`
// calls: the call statement becomes an empty `do end` unless an argument
// expression has side effects, in which case PreserveArgumentsSideEffects
// (default true) keeps that argument evaluated as its own statement. The
// whole file is skipped if anything locally rebinds the name `assert`.
type RemoveAssertions struct {
	PreserveArgumentsSideEffects bool `json:"preserve_arguments_side_effects,omitempty"`
}

func (*RemoveAssertions) Name() string { return "remove_assertions" }

func (r *RemoveAssertions) Process(block *luaast.Block, ctx *Context) []string {
	if declaresLocalName(block, "assert") {
		return nil
	}
	removeAssertCalls(block, r.PreserveArgumentsSideEffects)
	return nil
}

func removeAssertCalls(block *luaast.Block, preserveSideEffects bool) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		next = append(next, assertReplacement(stmt, preserveSideEffects)...)
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			removeAssertCalls(child, preserveSideEffects)
		}
	}
}

func assertReplacement(stmt luaast.Statement, preserveSideEffects bool) []luaast.Statement {
	call, ok := callStatementIdentifier(stmt, "assert")
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

// callStatementIdentifier reports whether stmt is a bare
// `name(...)` call statement where the callee is the plain identifier
// name, returning the call expression if so.
func callStatementIdentifier(stmt luaast.Statement, name string) (*luaast.CallExpression, bool) {
	cs, ok := stmt.(*luaast.CallStatement)
	if !ok || cs.Call.Method != "" {
		return nil, false
	}
	id, ok := cs.Call.Callee.(*luaast.Identifier)
	if !ok || id.Name != name {
		return nil, false
	}
	return cs.Call, true
}
