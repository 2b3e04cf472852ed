// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaeval"
)

func init() {
	Register("remove_unused_while", func(options json.RawMessage) (Rule, error) {
		r := &RemoveUnusedWhile{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveUnusedWhile drops a `while` loop entirely when its condition is
// statically false (and side-effect free), since the body can then never
// run once.
type RemoveUnusedWhile struct{}

func (*RemoveUnusedWhile) Name() string { return "remove_unused_while" }

func (r *RemoveUnusedWhile) Process(block *luaast.Block, ctx *Context) []string {
	dropDeadWhiles(block)
	return nil
}

func dropDeadWhiles(block *luaast.Block) {
	if block == nil {
		return
	}
	next := block.Statements[:0:0]
	for _, stmt := range block.Statements {
		if w, ok := stmt.(*luaast.WhileStatement); ok && isStaticallyFalse(w.Condition) {
			continue
		}
		next = append(next, stmt)
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			dropDeadWhiles(child)
		}
	}
}

func isStaticallyFalse(expr luaast.Expression) bool {
	if luaeval.HasSideEffects(expr) {
		return false
	}
	value := luaeval.Evaluate(expr, luaeval.NewState()).First()
	return !value.IsUnknown() && !value.Truthy()
}
