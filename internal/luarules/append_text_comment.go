// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"fmt"
	"strings"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/lualex"
)

func init() {
	Register("append_text_comment", func(options json.RawMessage) (Rule, error) {
		r := &AppendTextComment{}
		if err := decodeOptions(options, r); err != nil {
			return nil, err
		}
		if r.Text == "" && r.File == "" {
			return nil, fmt.Errorf("missing one field from `text` and `file`")
		}
		return r, nil
	})
}

// AppendTextComment attaches a fixed comment to the start or end of a
// file, rendered as a line comment for single-line text and a long
// comment otherwise. It's how a build can stamp a Luau directive comment
// (`--!strict`, `--!native`) onto every processed file.
type AppendTextComment struct {
	Text     string `json:"text,omitempty"`
	File     string `json:"file,omitempty"`
	Location string `json:"location,omitempty"` // "start" (default) or "end"
}

func (*AppendTextComment) Name() string { return "append_text_comment" }

func (r *AppendTextComment) Process(block *luaast.Block, ctx *Context) []string {
	text := r.Text
	if text == "" && r.File != "" {
		content, err := ctx.Resources.Get(r.File)
		if err != nil {
			return []string{fmt.Sprintf("reading comment file %q: %v", r.File, err)}
		}
		text = content
	}
	if text == "" {
		return nil
	}
	comment := renderComment(text)
	trivia := lualex.Trivia{Kind: lualex.CommentTrivia, Content: comment}
	newline := lualex.Trivia{Kind: lualex.WhitespaceTrivia, Content: "\n"}

	tok := firstToken(block)
	atEnd := r.Location == "end"
	if atEnd {
		tok = lastToken(block)
	}
	if tok == nil {
		return nil
	}
	if atEnd {
		tok.TrailingTrivia = append(tok.TrailingTrivia, newline, trivia)
	} else {
		tok.LeadingTrivia = append([]lualex.Trivia{trivia, newline}, tok.LeadingTrivia...)
	}
	return nil
}

// renderComment formats text as a `--` line comment when it has no
// newlines, or a `--[[ ]]` long comment otherwise.
func renderComment(text string) string {
	if !strings.Contains(text, "\n") {
		return "--" + text
	}
	return "--[[\n" + text + "\n]]"
}

func firstToken(block *luaast.Block) *luaast.Token {
	var found *luaast.Token
	luaast.WalkTokens(block, func(tok *luaast.Token) {
		if found == nil {
			found = tok
		}
	})
	return found
}

func lastToken(block *luaast.Block) *luaast.Token {
	var found *luaast.Token
	luaast.WalkTokens(block, func(tok *luaast.Token) {
		found = tok
	})
	return found
}
