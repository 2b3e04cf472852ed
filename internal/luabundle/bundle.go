// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luabundle implements the dependency-graph walk and inlining
// that fuses a tree of `require`d modules into one output Block (§4.8).
// The graph shape and cycle-detection policy mirror a build-graph
// scheduler's dependency graph, adapted from realization ordering to
// require-graph module ordering.
package luabundle

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"lucerna.dev/lucerna/internal/dataconv"
	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luarequire"
	"lucerna.dev/lucerna/internal/luaresource"
	"lucerna.dev/lucerna/internal/luavisit"
)

// Config is the bundle rule's configuration, as embedded under the
// top-level "bundle" key of a darklua configuration (§6).
type Config struct {
	Mode     luarequire.Locator
	Excludes []string
}

// Bundler walks the require graph reachable from one source file and
// inlines it.
type Bundler struct {
	Config Config
}

// requireCall is a `require(...)` call found during a walk, together
// with the single string literal argument it was called with.
type requireCall struct {
	expr    *luaast.Expression // address of the CallExpression's slot
	literal string
}

func findRequireCalls(block *luaast.Block) []requireCall {
	var calls []requireCall
	proc := &requireFinder{calls: &calls}
	luavisit.New(proc).VisitBlock(block)
	return calls
}

type requireFinder struct {
	luavisit.BaseProcessor
	calls *[]requireCall
}

func (f *requireFinder) ProcessExpression(expr *luaast.Expression) {
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
	*f.calls = append(*f.calls, requireCall{expr: expr, literal: str.Value})
}

// isExcluded reports whether resolvedPath matches one of the configured
// exclude globs.
func (b *Bundler) isExcluded(resolvedPath string) bool {
	for _, glob := range b.Config.Excludes {
		if ok, _ := path.Match(glob, resolvedPath); ok {
			return true
		}
	}
	return false
}

// RequiredPaths returns, sorted and without duplicates, every non-excluded,
// non-data-file path that a require(...) call reachable from block
// resolves to. The worker suspends the work item on these paths until
// they are present in its block cache.
func (b *Bundler) RequiredPaths(res luaresource.Resources, sourcePath string, block *luaast.Block) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, call := range findRequireCalls(block) {
		resolved, err := b.Config.Mode.Resolve(res, sourcePath, call.literal)
		if err != nil {
			return nil, fmt.Errorf("require(%q): %w", call.literal, err)
		}
		if b.isExcluded(resolved) || isDataFile(resolved) {
			continue
		}
		if !seen[resolved] {
			seen[resolved] = true
			out = append(out, resolved)
		}
	}
	sort.Strings(out)
	return out, nil
}

func isDataFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".json5", ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}

// moduleTableName and loaderFunctionName are the synthetic top-level
// locals the generated loader pattern binds. They're chosen unlikely to
// collide with user code; convert_require-lowered requires never read
// these names directly, and rename_variables running after bundle would
// rename them like any other local, which is why bundle should be placed
// last in a rule pipeline that also renames.
const (
	moduleTableName    = "__bundle_modules"
	loaderFunctionName = "__bundle_require"
)

// Apply rewrites block in place, inlining every require(...) call it can
// resolve using cache (keyed by normalized path, populated by the worker
// from each dependency's own fully-processed block) and res (for reading
// data files to inline directly). A call whose path is absent from cache
// and is not a data file makes Apply return an error — RequiredPaths
// should have already been satisfied by the time Apply runs.
func (b *Bundler) Apply(res luaresource.Resources, sourcePath string, block *luaast.Block, cache map[string]*luaast.Block) error {
	calls := findRequireCalls(block)
	if len(calls) == 0 {
		return nil
	}
	modules := make([]module, 0, len(calls))
	seen := make(map[string]int)
	for _, call := range calls {
		resolved, err := b.Config.Mode.Resolve(res, sourcePath, call.literal)
		if err != nil {
			return fmt.Errorf("require(%q): %w", call.literal, err)
		}
		if b.isExcluded(resolved) {
			continue
		}
		if isDataFile(resolved) {
			lit, err := inlineDataFile(res, resolved)
			if err != nil {
				return err
			}
			*call.expr = lit
			continue
		}
		depBlock, ok := cache[resolved]
		if !ok {
			return fmt.Errorf("require(%q): dependency block for %s not ready", call.literal, resolved)
		}
		idx, ok := seen[resolved]
		if !ok {
			idx = len(modules)
			seen[resolved] = idx
			modules = append(modules, module{path: resolved, block: depBlock})
		}
		*call.expr = loaderCallExpression(modules[idx].path)
	}
	if len(modules) == 0 {
		return nil
	}
	prependLoader(block, modules)
	return nil
}

type module struct {
	path  string
	block *luaast.Block
}

func inlineDataFile(res luaresource.Resources, resolvedPath string) (luaast.Expression, error) {
	text, err := res.Get(resolvedPath)
	if err != nil {
		return nil, err
	}
	format, err := dataconv.ParseFormat(strings.TrimPrefix(path.Ext(resolvedPath), "."))
	if err != nil {
		return nil, err
	}
	return dataconv.ToExpression(format, []byte(text))
}

// loaderCallExpression builds `__bundle_require("path")`.
func loaderCallExpression(modulePath string) luaast.Expression {
	return &luaast.CallExpression{
		Callee: &luaast.Identifier{Name: loaderFunctionName},
		Arguments: &luaast.ExpressionListArgument{
			Items: []luaast.Expression{
				&luaast.StringExpression{Value: modulePath, Delimiter: luaast.DoubleQuoteDelimiter},
			},
		},
	}
}

// prependLoader inserts the shared module table, the memoizing loader
// function, and one table entry per dependency at the front of block:
//
//	local __bundle_modules = {["path"] = function() ... end, ...}
//	local __bundle_loaded = {}
//	local function __bundle_require(path)
//	    if __bundle_loaded[path] == nil then
//	        __bundle_loaded[path] = __bundle_modules[path]()
//	    end
//	    return __bundle_loaded[path]
//	end
func prependLoader(block *luaast.Block, modules []module) {
	entries := make([]luaast.TableEntry, len(modules))
	for i, m := range modules {
		entries[i] = luaast.TableEntry{
			Kind: luaast.IndexedEntry,
			Key:  &luaast.StringExpression{Value: m.path, Delimiter: luaast.DoubleQuoteDelimiter},
			Value: &luaast.FunctionExpression{Body: &luaast.FunctionBody{Block: m.block}},
		}
	}
	preamble := []luaast.Statement{
		&luaast.LocalAssignStatement{
			Names:  []luaast.LocalName{{Name: &luaast.Identifier{Name: moduleTableName}}},
			Values: []luaast.Expression{&luaast.TableExpression{Entries: entries}},
		},
		&luaast.LocalAssignStatement{
			Names:  []luaast.LocalName{{Name: &luaast.Identifier{Name: "__bundle_loaded"}}},
			Values: []luaast.Expression{&luaast.TableExpression{}},
		},
		&luaast.LocalFunctionStatement{
			Name: &luaast.Identifier{Name: loaderFunctionName},
			Body: &luaast.FunctionBody{
				Parameters: []luaast.Parameter{{Name: &luaast.Identifier{Name: "path"}}},
				Block:      loaderBody(),
			},
		},
	}
	block.Statements = append(preamble, block.Statements...)
}

func loaderBody() *luaast.Block {
	pathVar := &luaast.Identifier{Name: "path"}
	loaded := func() luaast.Variable {
		return &luaast.IndexVariable{
			Object: &luaast.Identifier{Name: "__bundle_loaded"},
			Key:    pathVar,
		}
	}
	modules := func() luaast.Variable {
		return &luaast.IndexVariable{
			Object: &luaast.Identifier{Name: moduleTableName},
			Key:    pathVar,
		}
	}
	return &luaast.Block{
		Statements: []luaast.Statement{
			&luaast.IfStatement{
				Clauses: []luaast.IfClause{{
					Condition: &luaast.BinaryExpression{
						Operator: luaast.OpEqual,
						Left:     &luaast.VariableExpression{Variable: loaded()},
						Right:    &luaast.NilExpression{},
					},
					Block: &luaast.Block{
						Statements: []luaast.Statement{
							&luaast.AssignStatement{
								Targets: []luaast.Variable{loaded()},
								Values: []luaast.Expression{
									&luaast.CallExpression{
										Callee:    &luaast.VariableExpression{Variable: modules()},
										Arguments: &luaast.ExpressionListArgument{},
									},
								},
							},
						},
					},
				}},
			},
		},
		Last: &luaast.ReturnStatement{
			Expressions: []luaast.Expression{&luaast.VariableExpression{Variable: loaded()}},
		},
	}
}
