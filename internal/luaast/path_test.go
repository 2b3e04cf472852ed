// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaast

import "testing"

func TestNodePathResolve(t *testing.T) {
	inner := NewReturn(NewInt(1))
	ifStmt := &IfStatement{
		Clauses: []IfClause{
			{Condition: NewBool(true), Block: &Block{Last: inner}},
		},
	}
	root := &Block{Statements: []Statement{ifStmt}}

	path := NodePath{Steps: []PathStep{{Index: 0, Child: 0}}, Last: true}
	got, ok := path.Resolve(root)
	if !ok {
		t.Fatal("Resolve returned ok=false")
	}
	if got != Node(inner) {
		t.Errorf("Resolve returned %#v, want the original return statement", got)
	}

	stmtPath := NodePath{Steps: []PathStep{{Index: 0, Child: -1}}}
	got, ok = stmtPath.Resolve(root)
	if !ok || got != Node(ifStmt) {
		t.Errorf("Resolve(stmtPath) = %#v, %v; want ifStmt, true", got, ok)
	}

	badPath := NodePath{Steps: []PathStep{{Index: 5, Child: -1}}}
	if _, ok := badPath.Resolve(root); ok {
		t.Error("Resolve(badPath) returned ok=true, want false")
	}
}

func TestChildBlocksIfStatement(t *testing.T) {
	thenBlock := &Block{}
	elseBlock := &Block{}
	stmt := &IfStatement{
		Clauses: []IfClause{{Condition: NewBool(true), Block: thenBlock}},
		Else:    elseBlock,
	}
	children := ChildBlocks(stmt)
	if len(children) != 2 || children[0] != thenBlock || children[1] != elseBlock {
		t.Errorf("ChildBlocks = %#v, want [thenBlock, elseBlock]", children)
	}
}
