// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luarequire resolves the argument of a `require(...)` call to a
// normalized file path under one of four require modes (§4.8): plain
// relative paths, Luau `.luaurc` alias lookup, Roblox instance-tree
// navigation, and a hybrid that tries several modes in order. Every mode
// shares the same fixed file-search order, and every mode is consulted by
// both the bundler (internal/luabundle) and the convert_require rule.
package luarequire

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/tailscale/hujson"

	"lucerna.dev/lucerna/internal/luaresource"
)

// defaultModuleFolderName is the directory-index basename consulted when a
// resolved path names a directory ("init", "init.luau", "init.lua"),
// unless a locator's ModuleFolderName overrides it.
const defaultModuleFolderName = "init"

// Locator resolves a require(...) argument string, as written in the
// source file at fromPath, to a normalized file path that exists in res.
type Locator interface {
	// Resolve returns the normalized path require(argument) refers to,
	// read from the perspective of a source file at fromPath.
	Resolve(res luaresource.Resources, fromPath, argument string) (string, error)
}

// NotFoundError reports that no candidate from the fixed search order
// existed for a resolved module path.
type NotFoundError struct {
	Base string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("require: no module found at or under %s", e.Base)
}

// search tries, in the fixed order from §4.8, each candidate derived from
// base and returns the first that exists as a file.
func search(res luaresource.Resources, base, moduleFolderName string) (string, error) {
	if moduleFolderName == "" {
		moduleFolderName = defaultModuleFolderName
	}
	candidates := []string{
		base,
		base + ".luau",
		base + ".lua",
		path.Join(base, moduleFolderName),
		path.Join(base, moduleFolderName+".luau"),
		path.Join(base, moduleFolderName+".lua"),
	}
	for _, candidate := range candidates {
		normalized := luaresource.Normalize(candidate)
		isFile, err := res.IsFile(normalized)
		if err != nil {
			if _, ok := err.(*luaresource.NotFoundError); ok {
				continue
			}
			return "", err
		}
		if isFile {
			return normalized, nil
		}
	}
	return "", &NotFoundError{Base: base}
}

// PathLocator is the default require mode: paths are relative to the
// source file, "@name" prefixes map to a configured named source
// directory, and a directory resolves through ModuleFolderName.
type PathLocator struct {
	// Sources maps a named-source prefix (e.g. "@pkg") to the directory
	// it stands for; the directory is joined with the rest of the argument
	// as given.
	Sources map[string]string `json:"sources,omitempty"`
	// ModuleFolderName overrides "init" as the directory-index basename.
	ModuleFolderName string `json:"module-folder-name,omitempty"`
}

func (l *PathLocator) Resolve(res luaresource.Resources, fromPath, argument string) (string, error) {
	base, err := l.base(fromPath, argument)
	if err != nil {
		return "", err
	}
	return search(res, base, l.ModuleFolderName)
}

func (l *PathLocator) base(fromPath, argument string) (string, error) {
	if name, rest, ok := splitNamedSource(argument); ok {
		dir, ok := l.Sources[name]
		if !ok {
			return "", fmt.Errorf("require: unknown named source %q", name)
		}
		return path.Join(dir, rest), nil
	}
	if !strings.HasPrefix(argument, "./") && !strings.HasPrefix(argument, "../") {
		return "", fmt.Errorf("require: path-mode argument %q must start with ./ or ../", argument)
	}
	return path.Join(path.Dir(fromPath), argument), nil
}

func splitNamedSource(argument string) (name, rest string, ok bool) {
	if !strings.HasPrefix(argument, "@") {
		return "", "", false
	}
	if i := strings.IndexByte(argument, '/'); i >= 0 {
		return argument[:i], "." + argument[i:], true
	}
	return argument, ".", true
}

// LuauLocator resolves "@alias/..." arguments through the nearest
// ancestor ".luaurc" file's "aliases" map, falling back to path-relative
// resolution for arguments that do not start with "@".
type LuauLocator struct {
	ModuleFolderName string `json:"module-folder-name,omitempty"`

	cache map[string]luaurc
}

type luaurc struct {
	Aliases map[string]string `json:"aliases"`
}

func (l *LuauLocator) Resolve(res luaresource.Resources, fromPath, argument string) (string, error) {
	if !strings.HasPrefix(argument, "@") {
		return (&PathLocator{ModuleFolderName: l.ModuleFolderName}).Resolve(res, fromPath, argument)
	}
	name, rest, _ := splitNamedSource(argument)
	alias := strings.TrimPrefix(name, "@")
	dir, err := l.findAncestorConfig(res, path.Dir(fromPath))
	if err != nil {
		return "", err
	}
	rc, err := l.load(res, dir)
	if err != nil {
		return "", err
	}
	target, ok := rc.Aliases[alias]
	if !ok {
		return "", fmt.Errorf("require: unknown luaurc alias %q", alias)
	}
	base := path.Join(dir, target, rest)
	return search(res, base, l.ModuleFolderName)
}

func (l *LuauLocator) findAncestorConfig(res luaresource.Resources, dir string) (string, error) {
	for {
		exists, err := res.Exists(path.Join(dir, ".luaurc"))
		if err != nil {
			return "", err
		}
		if exists {
			return dir, nil
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("require: no .luaurc found above %s", dir)
		}
		dir = parent
	}
}

func (l *LuauLocator) load(res luaresource.Resources, dir string) (luaurc, error) {
	if rc, ok := l.cache[dir]; ok {
		return rc, nil
	}
	raw, err := res.Get(path.Join(dir, ".luaurc"))
	if err != nil {
		return luaurc{}, err
	}
	standardized, err := hujson.Standardize([]byte(raw))
	if err != nil {
		return luaurc{}, fmt.Errorf(".luaurc: %w", err)
	}
	var rc luaurc
	if err := json.Unmarshal(standardized, &rc); err != nil {
		return luaurc{}, fmt.Errorf(".luaurc: %w", err)
	}
	if l.cache == nil {
		l.cache = make(map[string]luaurc)
	}
	l.cache[dir] = rc
	return rc, nil
}

// RobloxLocator interprets `script`, `script.Parent` and chained field
// navigation as moves through a Roblox instance tree rooted at the source
// file's own position, mapping each move onto the filesystem: a field
// names a child file or directory and Parent the enclosing directory.
// A `TS.getModule(...)` argument is rejected with an error.
type RobloxLocator struct {
	// Root is accepted in configuration; Resolve does not read it.
	Root string `json:"root,omitempty"`
	// ModuleFolderName overrides "init" as the directory-index basename.
	ModuleFolderName string `json:"module-folder-name,omitempty"`
}

func (l *RobloxLocator) Resolve(res luaresource.Resources, fromPath, argument string) (string, error) {
	steps := strings.Split(argument, ".")
	if len(steps) == 0 || steps[0] != "script" {
		if strings.HasPrefix(argument, `TS.getModule(`) {
			return "", fmt.Errorf("require: TS.getModule resolution needs a rojo project map, not supported in this mode")
		}
		return "", fmt.Errorf("require: roblox-mode argument %q must begin with script", argument)
	}
	dir := path.Dir(fromPath)
	base := strings.TrimSuffix(strings.TrimSuffix(path.Base(fromPath), ".luau"), ".lua")
	if base == l.moduleFolderName() {
		// fromPath is itself a directory index; script refers to dir.
	} else {
		dir = path.Join(dir, base)
	}
	for _, step := range steps[1:] {
		switch step {
		case "Parent":
			dir = path.Dir(dir)
		default:
			dir = path.Join(dir, step)
		}
	}
	return search(res, dir, l.ModuleFolderName)
}

func (l *RobloxLocator) moduleFolderName() string {
	if l.ModuleFolderName == "" {
		return defaultModuleFolderName
	}
	return l.ModuleFolderName
}

// HybridLocator tries each configured Locator in order, returning the
// first successful resolution.
type HybridLocator struct {
	Locators []Locator
}

func (l *HybridLocator) Resolve(res luaresource.Resources, fromPath, argument string) (string, error) {
	var errs []error
	for _, inner := range l.Locators {
		resolved, err := inner.Resolve(res, fromPath, argument)
		if err == nil {
			return resolved, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("require: no locator resolved %q: %v", argument, errs)
}
