// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("filter_after_early_return", func(options json.RawMessage) (Rule, error) {
		r := &FilterAfterEarlyReturn{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// FilterAfterEarlyReturn drops statements that can never execute because
// an earlier statement in the same block is guaranteed to return, break,
// or continue — including transitively through a `do ... end` block whose
// own last statement is itself guaranteed terminating.
type FilterAfterEarlyReturn struct{}

func (*FilterAfterEarlyReturn) Name() string { return "filter_after_early_return" }

func (r *FilterAfterEarlyReturn) Process(block *luaast.Block, ctx *Context) []string {
	filterBlock(block)
	return nil
}

func filterBlock(block *luaast.Block) {
	if block == nil {
		return
	}
	for i, stmt := range block.Statements {
		if statementTerminates(stmt) && i < len(block.Statements)-1 {
			block.Statements = block.Statements[:i+1]
			block.Last = nil
			break
		}
	}
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			filterBlock(child)
		}
	}
}

// isBlockTerminating reports whether reaching the end of block guarantees
// that control has already left its enclosing block via return, break,
// or continue.
func isBlockTerminating(block *luaast.Block) bool {
	if block == nil {
		return false
	}
	if block.Last != nil {
		return true
	}
	if len(block.Statements) == 0 {
		return false
	}
	return statementTerminates(block.Statements[len(block.Statements)-1])
}

// statementTerminates reports whether executing stmt is guaranteed to
// leave the enclosing function/loop (directly, or by falling through a
// `do`/`if` whose own tail is terminating).
func statementTerminates(stmt luaast.Statement) bool {
	switch s := stmt.(type) {
	case *luaast.DoStatement:
		return isBlockTerminating(s.Block)
	case *luaast.IfStatement:
		if s.Else == nil {
			return false
		}
		for _, clause := range s.Clauses {
			if !isBlockTerminating(clause.Block) {
				return false
			}
		}
		return isBlockTerminating(s.Else)
	default:
		return false
	}
}
