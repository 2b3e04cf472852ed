// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("remove_nil_declaration", func(options json.RawMessage) (Rule, error) {
		r := &RemoveNilDeclaration{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveNilDeclaration drops `= nil` initializers from a local
// declaration, relying on Lua implicitly nil-initializing any name left
// without a value. Names initialized to nil are moved to the end of the
// declaration (reordering is safe: the names carry no value-producing
// expression), and the initializer list shrinks to the remaining values.
// Only declarations with exactly as many values as names are eligible,
// since a mismatched count already relies on Lua's own truncate/pad
// rules in a way this rule can't safely re-derive.
type RemoveNilDeclaration struct{}

func (*RemoveNilDeclaration) Name() string { return "remove_nil_declaration" }

func (r *RemoveNilDeclaration) Process(block *luaast.Block, ctx *Context) []string {
	rewriteNilDeclarations(block)
	return nil
}

func rewriteNilDeclarations(block *luaast.Block) {
	if block == nil {
		return
	}
	for i := range block.Statements {
		block.Statements[i] = rewriteNilDeclaration(block.Statements[i])
	}
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			rewriteNilDeclarations(child)
		}
	}
}

func rewriteNilDeclaration(stmt luaast.Statement) luaast.Statement {
	local, ok := stmt.(*luaast.LocalAssignStatement)
	if !ok || len(local.Values) != len(local.Names) {
		return stmt
	}
	hasNil := false
	for _, v := range local.Values {
		if _, ok := v.(*luaast.NilExpression); ok {
			hasNil = true
			break
		}
	}
	if !hasNil {
		return stmt
	}

	var nonNilNames, nilNames []luaast.LocalName
	var values []luaast.Expression
	for i, name := range local.Names {
		if _, ok := local.Values[i].(*luaast.NilExpression); ok {
			nilNames = append(nilNames, name)
			continue
		}
		nonNilNames = append(nonNilNames, name)
		values = append(values, local.Values[i])
	}
	if len(values) > 0 && !isAtomicLiteral(values[len(values)-1]) {
		values[len(values)-1] = &luaast.ParenthesizedExpression{Inner: values[len(values)-1]}
	}
	local.Names = append(nonNilNames, nilNames...)
	local.Values = values
	return local
}

// isAtomicLiteral reports whether expr is guaranteed single-valued and
// unaffected by losing trailing siblings in its value list: the
// constant literal kinds. Everything else (identifiers, field/index
// access, calls, vararg, operators, tables) is conservatively wrapped
// in parentheses when it becomes the new tail of a value list.
func isAtomicLiteral(expr luaast.Expression) bool {
	switch expr.(type) {
	case *luaast.NilExpression, *luaast.TrueExpression, *luaast.FalseExpression,
		*luaast.NumberExpression, *luaast.StringExpression:
		return true
	default:
		return false
	}
}
