// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"fmt"
	"regexp"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/lualex"
)

func init() {
	Register("remove_comments", func(options json.RawMessage) (Rule, error) {
		r := &RemoveComments{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		return r, nil
	})
}

// RemoveComments strips comment trivia from every token, keeping
// whitespace trivia untouched. Except holds regular expressions; a
// comment whose text matches any of them is kept instead of removed
// (e.g. `^--!` to preserve Luau's `--!native`-style directive comments).
type RemoveComments struct {
	Except []string `json:"except,omitempty"`
}

func (*RemoveComments) Name() string { return "remove_comments" }

func (r *RemoveComments) Process(block *luaast.Block, ctx *Context) []string {
	patterns := make([]*regexp.Regexp, 0, len(r.Except))
	for _, p := range r.Except {
		re, err := regexp.Compile(p)
		if err != nil {
			return []string{fmt.Sprintf("invalid except pattern %q: %v", p, err)}
		}
		patterns = append(patterns, re)
	}
	keep := func(t lualex.Trivia) bool {
		if t.Kind != lualex.CommentTrivia {
			return true
		}
		text := t.Text(ctx.Source)
		for _, re := range patterns {
			if re.MatchString(text) {
				return true
			}
		}
		return false
	}
	luaast.WalkTokens(block, func(tok *luaast.Token) {
		tok.LeadingTrivia = filterTriviaFunc(tok.LeadingTrivia, keep)
		tok.TrailingTrivia = filterTriviaFunc(tok.TrailingTrivia, keep)
	})
	return nil
}

func filterTriviaFunc(trivia []lualex.Trivia, keep func(lualex.Trivia) bool) []lualex.Trivia {
	if len(trivia) == 0 {
		return trivia
	}
	out := trivia[:0:0]
	for _, t := range trivia {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
