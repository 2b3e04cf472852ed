// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luarequire"
	"lucerna.dev/lucerna/internal/luavisit"
)

func init() {
	Register("convert_require", func(options json.RawMessage) (Rule, error) {
		var raw struct {
			Current json.RawMessage `json:"current,omitempty"`
			Target  json.RawMessage `json:"target,omitempty"`
		}
		if err := decodeOptions(options, &raw); err != nil {
			return nil, err
		}
		r := &ConvertRequire{}
		if len(raw.Current) > 0 {
			mode, err := luarequire.DecodeMode(raw.Current)
			if err != nil {
				return nil, fmt.Errorf("current: %w", err)
			}
			r.Current = mode
		} else {
			r.Current = &luarequire.PathLocator{}
		}
		if len(raw.Target) > 0 {
			mode, err := luarequire.DecodeMode(raw.Target)
			if err != nil {
				return nil, fmt.Errorf("target: %w", err)
			}
			r.Target = mode
		} else {
			r.Target = r.Current
		}
		return r, nil
	})
}

// ConvertRequire parses the argument of every `require(...)` call
// according to the configured source ("current") mode, resolves it to a
// normalized path, then rewrites the call's argument into the syntax
// that the target mode would use to reach the same path (§4.6).
//
// Only the path-mode target is implemented as a write-back encoding: a
// relative "./"-prefixed literal from the file doing the requiring to
// the resolved path. Luau and Roblox targets read but cannot yet encode
// their own syntax back out, since that projection is not specified by
// §4.8 beyond the read-side locator contract; converting into those
// target modes is left as unsupported (see DESIGN.md).
type ConvertRequire struct {
	Current, Target luarequire.Locator
}

func (*ConvertRequire) Name() string { return "convert_require" }

func (r *ConvertRequire) Process(block *luaast.Block, ctx *Context) []string {
	var errs []string
	proc := &convertRequireProcessor{rule: r, ctx: ctx, errs: &errs}
	luavisit.New(proc).VisitBlock(block)
	return errs
}

type convertRequireProcessor struct {
	luavisit.BaseProcessor
	rule *ConvertRequire
	ctx  *Context
	errs *[]string
}

func (p *convertRequireProcessor) ProcessExpression(expr *luaast.Expression) {
	call, ok := (*expr).(*luaast.CallExpression)
	if !ok || call.Method != "" {
		return
	}
	ident, ok := call.Callee.(*luaast.Identifier)
	if !ok || ident.Name != "require" {
		return
	}
	listArg, ok := call.Arguments.(*luaast.ExpressionListArgument)
	if !ok || len(listArg.Items) != 1 {
		return
	}
	str, ok := listArg.Items[0].(*luaast.StringExpression)
	if !ok {
		return
	}
	resolved, err := p.rule.Current.Resolve(p.ctx.Resources, p.ctx.Path, str.Value)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("require(%q): %v", str.Value, err))
		return
	}
	rewritten, err := encodePathTarget(p.ctx.Path, resolved)
	if err != nil {
		*p.errs = append(*p.errs, err.Error())
		return
	}
	str.Value = rewritten
}

// encodePathTarget writes resolvedPath as a "./"-relative literal from
// fromPath, the only target encoding this rule implements (see the
// ConvertRequire doc comment).
func encodePathTarget(fromPath, resolvedPath string) (string, error) {
	fromDir := path.Dir(fromPath)
	rel, err := relativeSlashPath(fromDir, resolvedPath)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}

// relativeSlashPath expresses target relative to base, both slash-
// separated normalized paths, without touching the filesystem.
func relativeSlashPath(base, target string) (string, error) {
	baseParts := splitNonEmpty(base)
	targetParts := splitNonEmpty(target)
	i := 0
	for i < len(baseParts) && i < len(targetParts) && baseParts[i] == targetParts[i] {
		i++
	}
	var parts []string
	for range baseParts[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[i:]...)
	if len(parts) == 0 {
		return ".", nil
	}
	return strings.Join(parts, "/"), nil
}

func splitNonEmpty(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}
