// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luarules is the rule catalog: named, independently configurable
// transformations over a [luaast.Block]. Every rule implements [Rule];
// rules that declare other files' processed blocks as required input for
// their next step also implement [RequireContentRule], consulted by the
// worker (internal/luaworker) to decide whether a work item can proceed
// or must suspend.
package luarules

import (
	"fmt"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaresource"
)

// Context is the read-only environment a rule's Process call runs in.
type Context struct {
	// Path is the normalized source path of the file being processed.
	Path string
	// Resources is the abstract store rules may read other files through
	// (e.g. the bundler reading a dependency, convert_require probing
	// candidate paths).
	Resources luaresource.Resources
	// Source is the original source text of the file at Path.
	Source string
	// ProjectRoot is the nearest ancestor directory configured as the
	// project root, if any. No rule in this package reads it; Luau-mode
	// require resolution finds `.luaurc` by walking up from Path instead.
	ProjectRoot string
	// BlockCache holds the fully-processed blocks of paths previously
	// named by a RequireContentRule's RequireContent, keyed by normalized
	// path. A rule whose RequireContent names a path not yet present here
	// causes the worker to suspend the work item.
	BlockCache map[string]*luaast.Block
}

// Rule is implemented by every entry in the catalog.
type Rule interface {
	// Name returns the rule's configuration name (snake_case, matching
	// the catalog names used in .darklua.json).
	Name() string
	// Process mutates block in place and returns zero or more
	// human-readable error strings if the rule could not fully apply;
	// a nil/empty return means success.
	Process(block *luaast.Block, ctx *Context) []string
}

// RequireContentRule is implemented by rules that need another file's
// fully-processed block before they can finish (the bundler,
// convert_require in path-following modes). RequireContent is called
// before Process on every invocation; if every path it returns is present
// in ctx.BlockCache, Process runs, otherwise the work item suspends with
// that path list as its new requirement.
type RequireContentRule interface {
	Rule
	RequireContent(ctx *Context, block *luaast.Block) []string
}

// Error formats a rule failure the way the worker's aggregated error
// report expects: file, rule name, and the rule's 0-based pipeline index.
type Error struct {
	File    string
	Rule    string
	Index   int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: rule #%d (%s): %s", e.File, e.Index, e.Rule, e.Message)
}
