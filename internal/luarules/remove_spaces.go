// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
)

func init() {
	Register("remove_spaces", func(options json.RawMessage) (Rule, error) {
		r := &RemoveSpaces{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveSpaces strips whitespace trivia from every token, leaving
// comments untouched. Paired with RemoveComments this collapses a file
// down to the minimal whitespace its generator needs to stay valid.
type RemoveSpaces struct{}

func (*RemoveSpaces) Name() string { return "remove_spaces" }

func (r *RemoveSpaces) Process(block *luaast.Block, ctx *Context) []string {
	luaast.WalkTokens(block, func(tok *luaast.Token) {
		*tok = tok.ClearWhitespace()
	})
	return nil
}
