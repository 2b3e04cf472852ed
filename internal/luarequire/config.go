// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarequire

import (
	"encoding/json"
	"fmt"

	jsonv2 "github.com/go-json-experiment/json"
)

// DecodeMode parses the require-mode shorthand from §6: a bare string
// naming a mode with its defaults, an object `{name:"path",...}`, or (for
// "hybrid") an array of such entries.
func DecodeMode(data json.RawMessage) (Locator, error) {
	trimmed := trimSpace(data)
	if len(trimmed) == 0 {
		return &PathLocator{}, nil
	}
	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return nil, err
		}
		return newByName(name, nil)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		hybrid := &HybridLocator{}
		for _, item := range items {
			inner, err := DecodeMode(item)
			if err != nil {
				return nil, err
			}
			hybrid.Locators = append(hybrid.Locators, inner)
		}
		return hybrid, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		nameRaw, ok := obj["name"]
		if !ok {
			return nil, fmt.Errorf("require-mode object missing %q", "name")
		}
		var name string
		if err := json.Unmarshal(nameRaw, &name); err != nil {
			return nil, err
		}
		delete(obj, "name")
		remaining, err := json.Marshal(obj)
		if err != nil {
			return nil, err
		}
		return newByName(name, remaining)
	default:
		return nil, fmt.Errorf("invalid require-mode value")
	}
}

func newByName(name string, options json.RawMessage) (Locator, error) {
	switch name {
	case "path":
		l := &PathLocator{}
		return l, decode(options, l)
	case "luau":
		l := &LuauLocator{}
		return l, decode(options, l)
	case "roblox":
		l := &RobloxLocator{}
		return l, decode(options, l)
	default:
		return nil, fmt.Errorf("unknown require-mode %q", name)
	}
}

func decode(options json.RawMessage, dst any) error {
	if len(options) == 0 || string(options) == "null" || string(options) == "{}" {
		return nil
	}
	return jsonv2.Unmarshal(options, dst, jsonv2.RejectUnknownMembers(true))
}

func trimSpace(data json.RawMessage) json.RawMessage {
	i, j := 0, len(data)
	for i < j && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n' || data[i] == '\r') {
		i++
	}
	for j > i && (data[j-1] == ' ' || data[j-1] == '\t' || data[j-1] == '\n' || data[j-1] == '\r') {
		j--
	}
	return data[i:j]
}
