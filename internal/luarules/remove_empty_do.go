// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("remove_empty_do", func(options json.RawMessage) (Rule, error) {
		r := &RemoveEmptyDo{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveEmptyDo drops `do ... end` statements whose block is empty.
// Nested blocks are processed first, so a `do` left empty only after its
// own empty `do` children are removed still gets collapsed.
type RemoveEmptyDo struct{}

func (*RemoveEmptyDo) Name() string { return "remove_empty_do" }

func (r *RemoveEmptyDo) Process(block *luaast.Block, ctx *Context) []string {
	removeEmptyDos(block)
	return nil
}

func removeEmptyDos(block *luaast.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			removeEmptyDos(child)
		}
	}
	next := block.Statements[:0:0]
	for _, stmt := range block.Statements {
		if do, ok := stmt.(*luaast.DoStatement); ok && blockIsEmpty(do.Block) {
			continue
		}
		next = append(next, stmt)
	}
	block.Statements = next
}

func blockIsEmpty(block *luaast.Block) bool {
	return block == nil || (len(block.Statements) == 0 && block.Last == nil)
}
