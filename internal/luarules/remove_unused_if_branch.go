// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaeval"
)

func init() {
	Register("remove_unused_if_branch", func(options json.RawMessage) (Rule, error) {
		r := &RemoveUnusedIfBranch{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveUnusedIfBranch evaluates each if/elseif condition with the
// virtual evaluator and drops branches whose condition is statically
// false. When that leaves a single truthy branch with nothing before it,
// the statement collapses to a plain `do ... end` running that branch's
// block; when no branch survives, it collapses to the else block (or to
// an empty `do end` if there is none).
type RemoveUnusedIfBranch struct{}

func (*RemoveUnusedIfBranch) Name() string { return "remove_unused_if_branch" }

func (r *RemoveUnusedIfBranch) Process(block *luaast.Block, ctx *Context) []string {
	rewriteIfBranches(block)
	return nil
}

func rewriteIfBranches(block *luaast.Block) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		next = append(next, rewriteIfStatement(stmt))
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			rewriteIfBranches(child)
		}
	}
}

func rewriteIfStatement(stmt luaast.Statement) luaast.Statement {
	ifStmt, ok := stmt.(*luaast.IfStatement)
	if !ok {
		return stmt
	}
	state := luaeval.NewState()
	var surviving []luaast.IfClause
	for _, clause := range ifStmt.Clauses {
		if luaeval.HasSideEffects(clause.Condition) {
			surviving = append(surviving, clause)
			continue
		}
		value := luaeval.Evaluate(clause.Condition, state).First()
		if value.IsUnknown() {
			surviving = append(surviving, clause)
			continue
		}
		if !value.Truthy() {
			continue
		}
		// A statically-true branch with no preceding surviving branch
		// makes every later branch (and the else) unreachable.
		if len(surviving) == 0 {
			return &luaast.DoStatement{Block: clause.Block}
		}
		surviving = append(surviving, clause)
		return &luaast.IfStatement{Clauses: surviving}
	}
	if len(surviving) == 0 {
		if ifStmt.Else != nil {
			return &luaast.DoStatement{Block: ifStmt.Else}
		}
		return &luaast.DoStatement{Block: &luaast.Block{}}
	}
	return &luaast.IfStatement{Clauses: surviving, Else: ifStmt.Else}
}
