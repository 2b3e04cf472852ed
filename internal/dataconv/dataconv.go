// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package dataconv converts JSON, JSON5, YAML, and TOML documents into a
// Lua literal [luaast.Expression] expressing a structurally equivalent
// value: strings become Lua strings, numbers become Lua numbers, and
// arrays/objects become Lua tables with key order preserved when the
// source format preserves it (§4.8's bullet 4, §6's "convert" verb).
package dataconv

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"lucerna.dev/lucerna/internal/luaast"
)

// Format names a supported data format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat maps a file extension or --format flag value to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json", "json5":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	default:
		return "", fmt.Errorf("unsupported data format %q", name)
	}
}

// entry is one key/value pair of a decoded object, in source order.
type entry struct {
	key   string
	value any
}

// object is a decoded mapping that preserves the order keys were read in.
type object []entry

// ToExpression decodes data (in the given format) and returns a Lua
// literal expression equivalent to the decoded value.
func ToExpression(format Format, data []byte) (luaast.Expression, error) {
	value, err := decode(format, data)
	if err != nil {
		return nil, err
	}
	return literal(value), nil
}

func decode(format Format, data []byte) (any, error) {
	switch format {
	case JSON:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
		return decodeJSONValue(jsontext.NewDecoder(bytes.NewReader(standardized)))
	case YAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeYAMLNode(node.Content[0])
	case TOML:
		var value map[string]any
		if err := toml.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
		return convertPlainMap(value), nil
	default:
		return nil, fmt.Errorf("unsupported data format %q", format)
	}
}

func decodeJSONValue(dec *jsontext.Decoder) (any, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 'f':
		return false, nil
	case 't':
		return true, nil
	case '"':
		return tok.String(), nil
	case '0':
		return tok.Float(), nil
	case '[':
		var items []any
		for dec.PeekKind() != ']' {
			item, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := dec.ReadToken(); err != nil { // ']'
			return nil, err
		}
		return items, nil
	case '{':
		obj := object{}
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, entry{key: keyTok.String(), value: value})
		}
		if _, err := dec.ReadToken(); err != nil { // '}'
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unexpected json token kind %v", tok.Kind())
	}
}

func decodeYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeYAMLNode(node.Content[0])
	case yaml.MappingNode:
		obj := object{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := decodeYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, entry{key: node.Content[i].Value, value: value})
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := decodeYAMLNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, err
		}
		return value, nil
	case yaml.AliasNode:
		return decodeYAMLNode(node.Alias)
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %v", node.Kind)
	}
}

// convertPlainMap recursively turns a map[string]any/[]any tree (TOML's
// decode shape, which does not preserve key order) into the same
// object/[]any shape the JSON and YAML paths use, sorting keys for
// deterministic output since TOML's decoder gives none.
func convertPlainMap(v any) any {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sortStrings(keys)
		obj := make(object, 0, len(keys))
		for _, k := range keys {
			obj = append(obj, entry{key: k, value: convertPlainMap(x[k])})
		}
		return obj
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = convertPlainMap(item)
		}
		return items
	default:
		return x
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func literal(v any) luaast.Expression {
	switch x := v.(type) {
	case nil:
		return &luaast.NilExpression{}
	case bool:
		if x {
			return &luaast.TrueExpression{}
		}
		return &luaast.FalseExpression{}
	case string:
		return &luaast.StringExpression{Value: x, Delimiter: luaast.DoubleQuoteDelimiter}
	case float64:
		return numberLiteral(x)
	case int:
		return numberLiteral(float64(x))
	case int64:
		return numberLiteral(float64(x))
	case []any:
		entries := make([]luaast.TableEntry, len(x))
		for i, item := range x {
			entries[i] = luaast.TableEntry{Kind: luaast.PositionalEntry, Value: literal(item)}
		}
		return &luaast.TableExpression{Entries: entries}
	case object:
		entries := make([]luaast.TableEntry, len(x))
		for i, e := range x {
			entries[i] = luaast.TableEntry{Kind: luaast.NamedEntry, Name: e.key, Value: literal(e.value)}
		}
		return &luaast.TableExpression{Entries: entries}
	default:
		return &luaast.StringExpression{Value: fmt.Sprint(x), Delimiter: luaast.DoubleQuoteDelimiter}
	}
}

func numberLiteral(value float64) *luaast.NumberExpression {
	isInteger := value == math.Trunc(value) && !math.IsInf(value, 0)
	expr := &luaast.NumberExpression{
		Value:          value,
		IsInteger:      isInteger,
		Representation: luaast.DecimalRepresentation,
	}
	text := strconv.FormatFloat(value, 'g', -1, 64)
	if isInteger {
		expr.IntegerValue = int64(value)
		text = strconv.FormatInt(expr.IntegerValue, 10)
	}
	expr.Token = luaast.Token{Content: text, HasContent: true}
	return expr
}
