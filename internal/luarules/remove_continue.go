// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"fmt"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("remove_continue", func(options json.RawMessage) (Rule, error) {
		r := &RemoveContinue{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveContinue rewrites loops containing `continue` into Lua
// 5.1-compatible form: the body is wrapped in `repeat ... until true`,
// with `continue` lowered to `break` (exiting the wrapper, which falls
// straight through to the next loop iteration) and any genuine `break`
// in the same loop's scope captured through a flag checked right after
// the wrapper, so it still reaches the real enclosing loop. Nested loops
// are transformed independently (continue always refers to the
// innermost loop); a function defined in the loop body is its own
// `continue` scope and is left untouched by the enclosing loop's pass
// (its own loops, if any, are handled by the same recursive walk).
type RemoveContinue struct{}

func (*RemoveContinue) Name() string { return "remove_continue" }

func (r *RemoveContinue) Process(block *luaast.Block, ctx *Context) []string {
	counter := 0
	walkForLoops(block, &counter)
	return nil
}

// walkForLoops performs a post-order traversal over every block reachable
// from block (including function bodies, via [luaast.ChildBlocks]), so
// that nested loops are rewritten before the loop enclosing them is
// inspected.
func walkForLoops(block *luaast.Block, counter *int) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			walkForLoops(child, counter)
		}
		if loopBlock, ok := loopBody(stmt); ok {
			rewriteLoopIfNeeded(loopBlock, counter)
		}
	}
}

func loopBody(stmt luaast.Statement) (*luaast.Block, bool) {
	switch s := stmt.(type) {
	case *luaast.WhileStatement:
		return s.Block, true
	case *luaast.RepeatStatement:
		return s.Block, true
	case *luaast.NumericForStatement:
		return s.Block, true
	case *luaast.GenericForStatement:
		return s.Block, true
	default:
		return nil, false
	}
}

func rewriteLoopIfNeeded(body *luaast.Block, counter *int) {
	*counter++
	breakFlag := fmt.Sprintf("_darklua_break_%d", *counter)
	hasContinue := false
	hasBreak := false
	rewriteOwnScope(body, breakFlag, &hasContinue, &hasBreak)
	if !hasContinue {
		return
	}
	inner := *body
	wrapped := &luaast.Block{
		Statements: []luaast.Statement{
			&luaast.RepeatStatement{
				Block:     &inner,
				Condition: &luaast.TrueExpression{},
			},
		},
	}
	if hasBreak {
		wrapped.Statements = append(wrapped.Statements, &luaast.IfStatement{
			Clauses: []luaast.IfClause{{
				Condition: &luaast.Identifier{Name: breakFlag},
				Block:     &luaast.Block{Last: &luaast.BreakStatement{}},
			}},
		})
	}
	*body = luaast.Block{
		Statements: []luaast.Statement{localAssign(breakFlag, luaast.NewBool(false))},
		Last:       nil,
	}
	body.Statements = append(body.Statements, wrapped.Statements...)
}

// rewriteOwnScope walks block and its nested if/do blocks — but not
// nested loops or function bodies, which are separate continue scopes —
// converting `continue` to `break` and capturing `break` behind
// breakFlag so it still escapes to the real enclosing loop once the
// injected `repeat until true` wrapper has been unwound.
func rewriteOwnScope(block *luaast.Block, breakFlag string, hasContinue, hasBreak *bool) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *luaast.IfStatement:
			for _, clause := range s.Clauses {
				rewriteOwnScope(clause.Block, breakFlag, hasContinue, hasBreak)
			}
			if s.Else != nil {
				rewriteOwnScope(s.Else, breakFlag, hasContinue, hasBreak)
			}
		case *luaast.DoStatement:
			rewriteOwnScope(s.Block, breakFlag, hasContinue, hasBreak)
		}
	}
	switch block.Last.(type) {
	case *luaast.ContinueStatement:
		*hasContinue = true
		block.Last = &luaast.BreakStatement{}
	case *luaast.BreakStatement:
		*hasBreak = true
		block.Statements = append(block.Statements, &luaast.AssignStatement{
			Targets: []luaast.Variable{&luaast.Identifier{Name: breakFlag}},
			Values:  []luaast.Expression{luaast.NewBool(true)},
		})
	}
}
