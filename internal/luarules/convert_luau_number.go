// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"strconv"
	"strings"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	ctor := func(name string) func(json.RawMessage) (Rule, error) {
		return func(options json.RawMessage) (Rule, error) {
			r := &ConvertLuauNumber{name: name}
			if err := decodeOptions(options, r); err != nil {
				return nil, err
			}
			return r, nil
		}
	}
	// "convert_luau_number" is the original (singular) catalog name;
	// "convert_luau_numbers" is the current one. Both behave identically.
	Register("convert_luau_number", ctor("convert_luau_number"))
	Register("convert_luau_numbers", ctor("convert_luau_numbers"))
}

// ConvertLuauNumber rewrites Luau-only numeral syntax — binary literals
// (`0b1010`) and underscore digit separators — into the plain decimal (or
// hexadecimal, for literals already written in hex) form every Lua
// version's lexer accepts. Decimal and hexadecimal literals without
// underscores are left untouched; only the Representation kinds and
// separator style Lua itself cannot parse are rewritten.
type ConvertLuauNumber struct {
	name string
}

func (r *ConvertLuauNumber) Name() string { return r.name }

func (r *ConvertLuauNumber) Process(block *luaast.Block, ctx *Context) []string {
	luavisit.New(&convertLuauNumberProcessor{src: ctx.Source}).VisitBlock(block)
	return nil
}

type convertLuauNumberProcessor struct {
	luavisit.BaseProcessor
	src string
}

func (p *convertLuauNumberProcessor) ProcessExpression(expr *luaast.Expression) {
	num, ok := (*expr).(*luaast.NumberExpression)
	if !ok {
		return
	}
	if num.Representation != luaast.BinaryRepresentation {
		if text := num.Token.Text(p.src); strings.Contains(text, "_") {
			num.Token.HasContent = true
			num.Token.Content = strings.ReplaceAll(text, "_", "")
		}
		return
	}
	num.Representation = luaast.DecimalRepresentation
	literal := strconv.FormatInt(num.IntegerValue, 10)
	if !num.IsInteger {
		literal = strconv.FormatFloat(num.Value, 'g', -1, 64)
	}
	num.Token.HasContent = true
	num.Token.Content = literal
}
