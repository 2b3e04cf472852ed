// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luabundle

import (
	"strings"
	"testing"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luagen"
	"lucerna.dev/lucerna/internal/luaparse"
	"lucerna.dev/lucerna/internal/luarequire"
	"lucerna.dev/lucerna/internal/luaresource"
)

func TestRequiredPaths(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/util.lua", `return {}`)

	block, err := luaparse.Parse("src/main.lua", `local m = require("./util")
return m`)
	if err != nil {
		t.Fatal(err)
	}

	b := &Bundler{Config: Config{Mode: &luarequire.PathLocator{}}}
	paths, err := b.RequiredPaths(res, "src/main.lua", block)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "src/util.lua" {
		t.Errorf("RequiredPaths = %v, want [src/util.lua]", paths)
	}
}

func TestRequiredPathsSkipsDataFiles(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/data.json", `{}`)

	block, err := luaparse.Parse("src/main.lua", `local d = require("./data.json")
return d`)
	if err != nil {
		t.Fatal(err)
	}

	b := &Bundler{Config: Config{Mode: &luarequire.PathLocator{}}}
	paths, err := b.RequiredPaths(res, "src/main.lua", block)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("RequiredPaths = %v, want empty (data files aren't work dependencies)", paths)
	}
}

func TestApplyInlinesModuleAndData(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/data.json", `{"x": 1}`)
	res.Write("src/util.lua", `return {greet = "hi"}`)

	mainBlock, err := luaparse.Parse("src/main.lua", `local m = require("./util")
local d = require("./data.json")
return m, d`)
	if err != nil {
		t.Fatal(err)
	}
	utilBlock, err := luaparse.Parse("src/util.lua", `return {greet = "hi"}`)
	if err != nil {
		t.Fatal(err)
	}

	b := &Bundler{Config: Config{Mode: &luarequire.PathLocator{}}}
	cache := map[string]*luaast.Block{"src/util.lua": utilBlock}
	if err := b.Apply(res, "src/main.lua", mainBlock, cache); err != nil {
		t.Fatal(err)
	}

	text, err := luagen.Generate(mainBlock, "", luagen.Parameters{Style: luagen.Dense})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "__bundle_modules") {
		t.Errorf("generated text missing loader preamble: %s", text)
	}
	if !strings.Contains(text, `__bundle_require("src/util.lua")`) {
		t.Errorf("generated text missing rewritten require call: %s", text)
	}
	if !strings.Contains(text, `x=1`) {
		t.Errorf("generated text missing inlined data literal: %s", text)
	}
}

func TestIsExcluded(t *testing.T) {
	b := &Bundler{Config: Config{Excludes: []string{"vendor/*"}}}
	if !b.isExcluded("vendor/acme.lua") {
		t.Error("isExcluded(vendor/acme.lua) = false, want true")
	}
	if b.isExcluded("src/util.lua") {
		t.Error("isExcluded(src/util.lua) = true, want false")
	}
}
