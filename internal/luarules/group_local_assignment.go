// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("group_local_assignment", func(options json.RawMessage) (Rule, error) {
		r := &GroupLocalAssignment{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// GroupLocalAssignment merges a run of adjacent single `local`
// declarations into one multi-name declaration, e.g. `local a = 1 local
// b = 2` becomes `local a, b = 1, 2`. A candidate is skipped whenever
// merging it would change behavior: its value count must be zero or
// match its name count (anything else depends on Lua's own multi-return
// truncation, which a merge would disturb), and none of its value
// expressions may reference a name the run already binds (merging would
// make that reference see the simultaneous new value instead of
// whatever it resolved to before).
type GroupLocalAssignment struct{}

func (*GroupLocalAssignment) Name() string { return "group_local_assignment" }

func (r *GroupLocalAssignment) Process(block *luaast.Block, ctx *Context) []string {
	groupLocalAssignments(block)
	return nil
}

func groupLocalAssignments(block *luaast.Block) {
	if block == nil {
		return
	}
	next := make([]luaast.Statement, 0, len(block.Statements))
	stmts := block.Statements
	for i := 0; i < len(stmts); {
		local, ok := stmts[i].(*luaast.LocalAssignStatement)
		if !ok || !localMergeEligible(local) {
			next = append(next, stmts[i])
			i++
			continue
		}
		group := []*luaast.LocalAssignStatement{local}
		bound := map[string]bool{}
		for _, n := range local.Names {
			bound[n.Name.Name] = true
		}
		j := i + 1
		for j < len(stmts) {
			cand, ok := stmts[j].(*luaast.LocalAssignStatement)
			if !ok || !localMergeEligible(cand) || referencesAny(cand.Values, bound) {
				break
			}
			group = append(group, cand)
			for _, n := range cand.Names {
				bound[n.Name.Name] = true
			}
			j++
		}
		if len(group) == 1 {
			next = append(next, local)
		} else {
			next = append(next, mergeLocalGroup(group))
		}
		i = j
	}
	block.Statements = next
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			groupLocalAssignments(child)
		}
	}
}

func localMergeEligible(local *luaast.LocalAssignStatement) bool {
	return len(local.Values) == 0 || len(local.Values) == len(local.Names)
}

func referencesAny(values []luaast.Expression, names map[string]bool) bool {
	synthetic := &luaast.Block{Last: &luaast.ReturnStatement{Expressions: values}}
	for name := range names {
		if blockReferencesName(synthetic, name) {
			return true
		}
	}
	return false
}

func mergeLocalGroup(group []*luaast.LocalAssignStatement) *luaast.LocalAssignStatement {
	anyValues := false
	for _, local := range group {
		if len(local.Values) > 0 {
			anyValues = true
		}
	}
	merged := &luaast.LocalAssignStatement{}
	for _, local := range group {
		merged.Names = append(merged.Names, local.Names...)
		if !anyValues {
			continue
		}
		if len(local.Values) == 0 {
			for range local.Names {
				merged.Values = append(merged.Values, luaast.NewNil())
			}
			continue
		}
		merged.Values = append(merged.Values, local.Values...)
	}
	return merged
}
