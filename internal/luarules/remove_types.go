// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("remove_types", func(options json.RawMessage) (Rule, error) {
		r := &RemoveTypes{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveTypes lowers Luau source to plain Lua by dropping every type
// annotation: `export type`/`type` alias declarations are removed
// outright, and type annotations on local declarations, function
// parameters, variadic tails, return types, and generic parameter lists
// are cleared. Type syntax is never verified by this module (it is not a
// type checker); this rule only erases it.
type RemoveTypes struct{}

func (*RemoveTypes) Name() string { return "remove_types" }

func (r *RemoveTypes) Process(block *luaast.Block, ctx *Context) []string {
	removeTypeDeclarations(block)
	luavisit.New(&stripTypesProcessor{}).VisitBlock(block)
	return nil
}

// removeTypeDeclarations drops every TypeDeclarationStatement from block
// and its nested statement blocks. Run before the annotation-stripping
// visitor so the visitor never has to cope with a type alias whose
// definition got erased out from under it.
func removeTypeDeclarations(block *luaast.Block) {
	if block == nil {
		return
	}
	next := block.Statements[:0:0]
	for _, stmt := range block.Statements {
		if _, ok := stmt.(*luaast.TypeDeclarationStatement); ok {
			continue
		}
		next = append(next, stmt)
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			removeTypeDeclarations(child)
		}
	}
}

type stripTypesProcessor struct {
	luavisit.BaseProcessor
}

func (p *stripTypesProcessor) ProcessStatement(stmt *luaast.Statement) {
	local, ok := (*stmt).(*luaast.LocalAssignStatement)
	if !ok {
		return
	}
	for i := range local.Names {
		local.Names[i].Type = nil
	}
}

func (p *stripTypesProcessor) ProcessFunctionBody(body *luaast.FunctionBody) {
	body.GenericParameters = nil
	body.VariadicType = nil
	body.ReturnType = nil
	for i := range body.Parameters {
		body.Parameters[i].Type = nil
	}
}
