// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("remove_interpolated_string", func(options json.RawMessage) (Rule, error) {
		r := &RemoveInterpolatedString{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveInterpolatedString lowers a Luau interpolated string
// (`` `a{b}c` ``) to a plain Lua string-concatenation expression:
// literal segments become string literals, embedded-expression segments
// are wrapped in `tostring(...)` (matching the interpolation's own
// implicit coercion), and every segment is joined left to right with
// `..`. An interpolated string with no segments lowers to the empty
// string literal.
type RemoveInterpolatedString struct{}

func (*RemoveInterpolatedString) Name() string { return "remove_interpolated_string" }

func (r *RemoveInterpolatedString) Process(block *luaast.Block, ctx *Context) []string {
	luavisit.New(&interpolatedStringProcessor{}).VisitBlock(block)
	return nil
}

type interpolatedStringProcessor struct {
	luavisit.BaseProcessor
}

func (p *interpolatedStringProcessor) ProcessExpression(expr *luaast.Expression) {
	interp, ok := (*expr).(*luaast.InterpolatedStringExpression)
	if !ok {
		return
	}
	*expr = concatenateInterpolatedSegments(interp.Segments)
}

func concatenateInterpolatedSegments(segments []luaast.InterpolatedStringSegment) luaast.Expression {
	parts := make([]luaast.Expression, 0, len(segments))
	for _, seg := range segments {
		if seg.Expression == nil {
			parts = append(parts, luaast.NewString(seg.Literal))
			continue
		}
		parts = append(parts, &luaast.CallExpression{
			Callee:    luaast.NewIdentifier("tostring"),
			Arguments: &luaast.ExpressionListArgument{Items: []luaast.Expression{seg.Expression}},
		})
	}
	if len(parts) == 0 {
		return luaast.NewString("")
	}
	result := parts[0]
	for _, part := range parts[1:] {
		result = &luaast.BinaryExpression{Left: result, Operator: luaast.OpConcat, Right: part}
	}
	return result
}
