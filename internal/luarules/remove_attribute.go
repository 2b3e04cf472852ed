// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("remove_attribute", func(options json.RawMessage) (Rule, error) {
		r := &RemoveAttribute{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveAttribute strips Luau local-variable attributes (`<const>` and
// `<close>`) from every local declaration, leaving the plain `local a = b`
// form for targets that do not understand the attribute syntax. Attribute
// is optional and, when non-empty, limits removal to that one attribute
// name ("const" or "close"); the default removes both.
type RemoveAttribute struct {
	Attribute string `json:"attribute,omitempty"`
}

func (*RemoveAttribute) Name() string { return "remove_attribute" }

func (r *RemoveAttribute) Process(block *luaast.Block, ctx *Context) []string {
	removeAttributes(block, r.attributeFilter())
	return nil
}

func (r *RemoveAttribute) attributeFilter() luaast.LocalAttribute {
	switch r.Attribute {
	case "const":
		return luaast.ConstAttribute
	case "close":
		return luaast.CloseAttribute
	default:
		return luaast.NoAttribute
	}
}

func removeAttributes(block *luaast.Block, only luaast.LocalAttribute) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		local, ok := stmt.(*luaast.LocalAssignStatement)
		if !ok {
			continue
		}
		for i := range local.Names {
			if only == luaast.NoAttribute || local.Names[i].Attribute == only {
				local.Names[i].Attribute = luaast.NoAttribute
			}
		}
	}
	for _, stmt := range block.Statements {
		for _, child := range luaast.ChildBlocks(stmt) {
			removeAttributes(child, only)
		}
	}
}
