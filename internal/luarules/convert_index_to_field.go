// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("convert_index_to_field", func(options json.RawMessage) (Rule, error) {
		r := &ConvertIndexToField{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// ConvertIndexToField rewrites `var["field"]` to `var.field` whenever the
// string key is a valid, non-reserved Lua identifier, in both indexing
// expressions and `["key"] = value` table entries.
type ConvertIndexToField struct{}

func (*ConvertIndexToField) Name() string { return "convert_index_to_field" }

func (r *ConvertIndexToField) Process(block *luaast.Block, ctx *Context) []string {
	proc := &convertIndexToFieldProcessor{}
	luavisit.New(proc).VisitBlock(block)
	return nil
}

type convertIndexToFieldProcessor struct {
	luavisit.BaseProcessor
}

func (p *convertIndexToFieldProcessor) ProcessVariable(variable *luaast.Variable) {
	index, ok := (*variable).(*luaast.IndexVariable)
	if !ok {
		return
	}
	key, ok := index.Key.(*luaast.StringExpression)
	if !ok || !isValidFieldName(key.Value) {
		return
	}
	*variable = &luaast.FieldVariable{Object: index.Object, Field: luaast.NewIdentifier(key.Value)}
}

func (p *convertIndexToFieldProcessor) ProcessExpression(expr *luaast.Expression) {
	table, ok := (*expr).(*luaast.TableExpression)
	if !ok {
		return
	}
	for i := range table.Entries {
		entry := &table.Entries[i]
		if entry.Kind != luaast.IndexedEntry {
			continue
		}
		key, ok := entry.Key.(*luaast.StringExpression)
		if !ok || !isValidFieldName(key.Value) {
			continue
		}
		entry.Kind = luaast.NamedEntry
		entry.Name = key.Value
		entry.Key = nil
	}
}

// isValidFieldName reports whether name can be used after a dot: a
// non-empty Lua identifier that is not a reserved keyword.
func isValidFieldName(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}
	return true
}
