// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaeval"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("remove_floor_division", func(options json.RawMessage) (Rule, error) {
		r := &RemoveFloorDivision{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveFloorDivision lowers Luau's `a // b` floor-division operator to
// `math.floor(a / b)`, and its compound form `a //= b` to
// `a = math.floor(a / b)`, using the same target-hoisting as
// RemoveCompoundAssignment when the assignment target's object or key
// expression has side effects.
type RemoveFloorDivision struct{}

func (*RemoveFloorDivision) Name() string { return "remove_floor_division" }

func (r *RemoveFloorDivision) Process(block *luaast.Block, ctx *Context) []string {
	counter := 0
	expandFloorDivisionCompounds(block, &counter)
	luavisit.New(&floorDivisionProcessor{}).VisitBlock(block)
	return nil
}

type floorDivisionProcessor struct {
	luavisit.BaseProcessor
}

func (p *floorDivisionProcessor) ProcessExpression(expr *luaast.Expression) {
	bin, ok := (*expr).(*luaast.BinaryExpression)
	if !ok || bin.Operator != luaast.OpFloorDiv {
		return
	}
	*expr = mathFloorDivide(bin.Left, bin.Right)
}

func mathFloorDivide(left, right luaast.Expression) luaast.Expression {
	divide := &luaast.BinaryExpression{Left: left, Operator: luaast.OpDiv, Right: right}
	return &luaast.CallExpression{
		Callee:    &luaast.FieldVariable{Object: luaast.NewIdentifier("math"), Field: luaast.NewIdentifier("floor")},
		Arguments: &luaast.ExpressionListArgument{Items: []luaast.Expression{divide}},
	}
}

func expandFloorDivisionCompounds(block *luaast.Block, counter *int) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		compound, ok := stmt.(*luaast.CompoundAssignStatement)
		if !ok || compound.Operator != luaast.CompoundFloorDiv {
			next = append(next, stmt)
			continue
		}
		next = append(next, expandFloorDivisionCompound(compound, counter)...)
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			expandFloorDivisionCompounds(child, counter)
		}
	}
}

func expandFloorDivisionCompound(s *luaast.CompoundAssignStatement, counter *int) []luaast.Statement {
	switch target := s.Target.(type) {
	case *luaast.Identifier:
		read := &luaast.Identifier{Name: target.Name}
		return []luaast.Statement{&luaast.AssignStatement{
			Targets: []luaast.Variable{target},
			Values:  []luaast.Expression{mathFloorDivide(read, s.Value)},
		}}
	case *luaast.FieldVariable:
		var stmts []luaast.Statement
		object := target.Object
		if luaeval.HasSideEffects(object) {
			name := freshName(counter)
			stmts = append(stmts, localAssign(name, object))
			object = &luaast.Identifier{Name: name}
		}
		newTarget := &luaast.FieldVariable{Object: object, Field: target.Field}
		readTarget := &luaast.FieldVariable{Object: object, Field: target.Field}
		stmts = append(stmts, &luaast.AssignStatement{
			Targets: []luaast.Variable{newTarget},
			Values:  []luaast.Expression{mathFloorDivide(readTarget, s.Value)},
		})
		return stmts
	case *luaast.IndexVariable:
		var stmts []luaast.Statement
		object := target.Object
		if luaeval.HasSideEffects(object) {
			name := freshName(counter)
			stmts = append(stmts, localAssign(name, object))
			object = &luaast.Identifier{Name: name}
		}
		key := target.Key
		if luaeval.HasSideEffects(key) {
			name := freshName(counter)
			stmts = append(stmts, localAssign(name, key))
			key = &luaast.Identifier{Name: name}
		}
		newTarget := &luaast.IndexVariable{Object: object, Key: key}
		readTarget := &luaast.IndexVariable{Object: object, Key: key}
		stmts = append(stmts, &luaast.AssignStatement{
			Targets: []luaast.Variable{newTarget},
			Values:  []luaast.Expression{mathFloorDivide(readTarget, s.Value)},
		})
		return stmts
	default:
		return []luaast.Statement{s}
	}
}
