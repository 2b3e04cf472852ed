// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonv2 "github.com/go-json-experiment/json"
)

// constructor builds a Rule from its raw JSON options (nil for the bare
// "name" shorthand), rejecting unknown option keys the way the rest of
// this module's configuration does.
type constructor func(options json.RawMessage) (Rule, error)

var registry = map[string]constructor{}

// Register adds a rule constructor to the catalog, keyed by its
// configuration name. Called from each rule file's init.
func Register(name string, ctor constructor) {
	if _, exists := registry[name]; exists {
		panic("luarules: duplicate rule name " + name)
	}
	registry[name] = ctor
}

// Names returns every registered rule name, for the JSON-schema export
// and for validating --rules flags.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// DecodeRules parses a `rules` (or its `process` alias) array: each
// element is either a bare `"rule_name"` string or an object
// `{"rule": "rule_name", ...options}`. Unknown rule names and unknown
// option keys are both rejected.
func DecodeRules(data json.RawMessage) ([]Rule, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode rule list: %w", err)
	}
	rules := make([]Rule, 0, len(items))
	for i, item := range items {
		name, options, err := splitRuleItem(item)
		if err != nil {
			return nil, fmt.Errorf("rule #%d: %w", i, err)
		}
		ctor, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("rule #%d: unknown rule %q", i, name)
		}
		rule, err := ctor(options)
		if err != nil {
			return nil, fmt.Errorf("rule #%d (%s): %w", i, name, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func splitRuleItem(item json.RawMessage) (name string, options json.RawMessage, err error) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(item, &name); err != nil {
			return "", nil, fmt.Errorf("invalid rule name: %w", err)
		}
		return name, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(item, &obj); err != nil {
		return "", nil, fmt.Errorf("rule entry must be a string or object: %w", err)
	}
	nameRaw, ok := obj["rule"]
	if !ok {
		return "", nil, fmt.Errorf(`object rule entry missing "rule" key`)
	}
	if err := json.Unmarshal(nameRaw, &name); err != nil {
		return "", nil, fmt.Errorf("invalid rule name: %w", err)
	}
	delete(obj, "rule")
	remaining, err := json.Marshal(obj)
	if err != nil {
		return "", nil, err
	}
	return name, remaining, nil
}

// decodeOptions unmarshals raw (which may be nil, for the bare-string
// shorthand) into dst, rejecting unknown members.
func decodeOptions(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" {
		return nil
	}
	return jsonv2.Unmarshal(raw, dst, jsonv2.RejectUnknownMembers(true))
}
