// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"fmt"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaeval"
)

func init() {
	Register("remove_compound_assignment", func(options json.RawMessage) (Rule, error) {
		r := &RemoveCompoundAssignment{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveCompoundAssignment lowers Luau's `a op= b` to plain Lua `a = a op
// b`. When the target is a field or index access whose object (or, for
// indexing, key) expression has side effects, it hoists each such
// sub-expression into a fresh local evaluated exactly once, preserving
// the original left-to-right evaluation order.
type RemoveCompoundAssignment struct{}

func (*RemoveCompoundAssignment) Name() string { return "remove_compound_assignment" }

func (r *RemoveCompoundAssignment) Process(block *luaast.Block, ctx *Context) []string {
	counter := 0
	expandCompoundAssignments(block, &counter)
	return nil
}

func expandCompoundAssignments(block *luaast.Block, counter *int) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		if compound, ok := stmt.(*luaast.CompoundAssignStatement); ok {
			next = append(next, expandCompound(compound, counter)...)
			continue
		}
		next = append(next, stmt)
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			expandCompoundAssignments(child, counter)
		}
	}
}

func expandCompound(s *luaast.CompoundAssignStatement, counter *int) []luaast.Statement {
	binOp := s.Operator.BinaryOperator()
	switch target := s.Target.(type) {
	case *luaast.Identifier:
		read := &luaast.Identifier{Name: target.Name}
		assign := &luaast.BinaryExpression{Left: read, Operator: binOp, Right: s.Value}
		return []luaast.Statement{&luaast.AssignStatement{
			Targets: []luaast.Variable{target},
			Values:  []luaast.Expression{assign},
		}}
	case *luaast.FieldVariable:
		var hoisted []luaast.Statement
		object := target.Object
		if luaeval.HasSideEffects(object) {
			name := freshName(counter)
			hoisted = append(hoisted, localAssign(name, object))
			object = &luaast.Identifier{Name: name}
		}
		newTarget := &luaast.FieldVariable{Object: object, Field: target.Field}
		readTarget := &luaast.FieldVariable{Object: object, Field: target.Field}
		assign := &luaast.BinaryExpression{Left: readTarget, Operator: binOp, Right: s.Value}
		assignStmt := &luaast.AssignStatement{
			Targets: []luaast.Variable{newTarget},
			Values:  []luaast.Expression{assign},
		}
		if len(hoisted) == 0 {
			return []luaast.Statement{assignStmt}
		}
		return wrapInDo(append(hoisted, assignStmt))
	case *luaast.IndexVariable:
		var hoisted []luaast.Statement
		object := target.Object
		if luaeval.HasSideEffects(object) {
			name := freshName(counter)
			hoisted = append(hoisted, localAssign(name, object))
			object = &luaast.Identifier{Name: name}
		}
		key := target.Key
		if luaeval.HasSideEffects(key) {
			name := freshName(counter)
			hoisted = append(hoisted, localAssign(name, key))
			key = &luaast.Identifier{Name: name}
		}
		newTarget := &luaast.IndexVariable{Object: object, Key: key}
		readTarget := &luaast.IndexVariable{Object: object, Key: key}
		assign := &luaast.BinaryExpression{Left: readTarget, Operator: binOp, Right: s.Value}
		assignStmt := &luaast.AssignStatement{
			Targets: []luaast.Variable{newTarget},
			Values:  []luaast.Expression{assign},
		}
		if len(hoisted) == 0 {
			return []luaast.Statement{assignStmt}
		}
		return wrapInDo(append(hoisted, assignStmt))
	default:
		return []luaast.Statement{s}
	}
}

func wrapInDo(stmts []luaast.Statement) []luaast.Statement {
	return []luaast.Statement{luaast.NewDo(&luaast.Block{Statements: stmts})}
}

func freshName(counter *int) string {
	*counter++
	return fmt.Sprintf("_darklua_compound_%d", *counter)
}

func localAssign(name string, value luaast.Expression) *luaast.LocalAssignStatement {
	return &luaast.LocalAssignStatement{
		Names:  []luaast.LocalName{{Name: &luaast.Identifier{Name: name}}},
		Values: []luaast.Expression{value},
	}
}
