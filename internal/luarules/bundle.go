// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarules

import (
	"encoding/json"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luabundle"
	"lucerna.dev/lucerna/internal/luarequire"
)

func init() {
	Register("bundle", func(options json.RawMessage) (Rule, error) {
		var raw struct {
			RequireMode json.RawMessage `json:"require-mode,omitempty"`
			Excludes    []string        `json:"excludes,omitempty"`
		}
		if err := decodeOptions(options, &raw); err != nil {
			return nil, err
		}
		mode := luarequire.Locator(&luarequire.PathLocator{})
		if len(raw.RequireMode) > 0 {
			var err error
			mode, err = luarequire.DecodeMode(raw.RequireMode)
			if err != nil {
				return nil, err
			}
		}
		return &Bundle{b: luabundle.Bundler{Config: luabundle.Config{Mode: mode, Excludes: raw.Excludes}}}, nil
	})
}

// Bundle is the "bundle" rule (§4.8): it inlines every `require`d module
// reachable from the file being processed into one self-contained Block.
// It is a [RequireContentRule]: the worker will not call Process until
// every path RequireContent names is present in ctx.BlockCache.
type Bundle struct {
	b luabundle.Bundler
}

func (*Bundle) Name() string { return "bundle" }

func (r *Bundle) RequireContent(ctx *Context, block *luaast.Block) []string {
	paths, err := r.b.RequiredPaths(ctx.Resources, ctx.Path, block)
	if err != nil {
		return nil
	}
	return paths
}

func (r *Bundle) Process(block *luaast.Block, ctx *Context) []string {
	paths, err := r.b.RequiredPaths(ctx.Resources, ctx.Path, block)
	if err != nil {
		return []string{err.Error()}
	}
	for _, p := range paths {
		if _, ok := ctx.BlockCache[p]; !ok {
			return []string{"require(" + p + "): dependency not ready"}
		}
	}
	if err := r.b.Apply(ctx.Resources, ctx.Path, block, ctx.BlockCache); err != nil {
		return []string{err.Error()}
	}
	return nil
}
