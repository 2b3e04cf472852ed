// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaconfig

import (
	"sort"

	"lucerna.dev/lucerna/internal/luarules"
)

// Schema is a minimal, hand-built JSON-schema document describing the
// shape Decode accepts: enough for an editor to validate a
// configuration's top-level keys and catch an unknown rule name, without
// modeling every individual rule's own option schema.
type Schema struct {
	Schema      string         `json:"$schema"`
	Title       string         `json:"title"`
	Type        string         `json:"type"`
	Properties  map[string]any `json:"properties"`
	Additional  bool           `json:"additionalProperties"`
}

// GenerateSchema returns the canonical JSON-schema export named by §6's
// generate-json-schema verb.
func GenerateSchema() *Schema {
	names := luarules.Names()
	sort.Strings(names)

	ruleNameSchema := map[string]any{"type": "string", "enum": names}
	ruleObjectSchema := map[string]any{
		"type":     "object",
		"required": []string{"rule"},
		"properties": map[string]any{
			"rule": ruleNameSchema,
		},
	}
	rulesSchema := map[string]any{
		"type":  "array",
		"items": map[string]any{"oneOf": []any{ruleNameSchema, ruleObjectSchema}},
	}

	return &Schema{
		Schema: "http://json-schema.org/draft-07/schema#",
		Title:  "Configuration",
		Type:   "object",
		Properties: map[string]any{
			"generator": map[string]any{
				"oneOf": []any{
					map[string]any{"type": "string", "enum": []string{"retain-lines", "dense", "readable"}},
					map[string]any{
						"type":     "object",
						"required": []string{"name"},
						"properties": map[string]any{
							"name":        map[string]any{"type": "string", "enum": []string{"retain-lines", "dense", "readable"}},
							"column_span": map[string]any{"type": "integer", "minimum": 0},
						},
					},
				},
			},
			"rules":   rulesSchema,
			"process": rulesSchema,
			"bundle": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"require-mode": map[string]any{},
					"excludes":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
		Additional: false,
	}
}
