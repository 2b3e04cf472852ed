// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaworker

import (
	"testing"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luaconfig"
	"lucerna.dev/lucerna/internal/luaparse"
	"lucerna.dev/lucerna/internal/luaresource"
)

func TestAdvanceRunsToCompletion(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "local x = 1\nreturn x")

	cfg, err := luaconfig.Decode([]byte(`{"generator": "dense"}`))
	if err != nil {
		t.Fatal(err)
	}
	w := &Worker{Resources: res, Config: cfg}
	item := &WorkItem{SourcePath: "src/main.lua"}

	if err := w.Advance(item, nil); err != nil {
		t.Fatal(err)
	}
	if item.Status != Done {
		t.Fatalf("Status = %v, want Done", item.Status)
	}
	if len(item.Result.Errors) != 0 {
		t.Fatalf("Result.Errors = %v, want none", item.Result.Errors)
	}
	if want := "local x=1\nreturn x"; item.Result.Output != want {
		t.Errorf("Result.Output = %q, want %q", item.Result.Output, want)
	}
}

func TestAdvanceReportsParseError(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/broken.lua", "local = 1")

	cfg, err := luaconfig.Decode([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	w := &Worker{Resources: res, Config: cfg}
	item := &WorkItem{SourcePath: "src/broken.lua"}

	if err := w.Advance(item, nil); err != nil {
		t.Fatal(err)
	}
	if item.Status != Done {
		t.Fatalf("Status = %v, want Done", item.Status)
	}
	if len(item.Result.Errors) == 0 {
		t.Error("Result.Errors is empty, want a parse error")
	}
}

func TestAdvanceSuspendsOnMissingRequirement(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", `local m = require("./util")
return m`)
	res.Write("src/util.lua", "return {}")

	cfg, err := luaconfig.Decode([]byte(`{"rules": ["bundle"]}`))
	if err != nil {
		t.Fatal(err)
	}
	w := &Worker{Resources: res, Config: cfg}
	item := &WorkItem{SourcePath: "src/main.lua"}

	if err := w.Advance(item, map[string]*luaast.Block{}); err != nil {
		t.Fatal(err)
	}
	if item.Status != InProgress {
		t.Fatalf("Status = %v, want InProgress (suspended on missing dependency)", item.Status)
	}
	if want := []string{"src/util.lua"}; len(item.Progress.RequiredPaths) != 1 || item.Progress.RequiredPaths[0] != want[0] {
		t.Errorf("RequiredPaths = %v, want %v", item.Progress.RequiredPaths, want)
	}

	depBlock, err := luaparse.Parse("src/util.lua", "return {}")
	if err != nil {
		t.Fatal(err)
	}
	cache := map[string]*luaast.Block{"src/util.lua": depBlock}
	if err := w.Advance(item, cache); err != nil {
		t.Fatal(err)
	}
	if item.Status != Done {
		t.Fatalf("Status = %v, want Done after dependency became available", item.Status)
	}
}

func TestResolveOutputPathDefaultsToInput(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "")
	got, err := ResolveOutputPath(res, "src/main.lua", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "src/main.lua" {
		t.Errorf("ResolveOutputPath = %q, want %q", got, "src/main.lua")
	}
}

func TestResolveOutputPathDirectoryJoinsBasename(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "")
	res.Write("out/.keep", "")
	got, err := ResolveOutputPath(res, "src/main.lua", "out")
	if err != nil {
		t.Fatal(err)
	}
	if want := "out/main.lua"; got != want {
		t.Errorf("ResolveOutputPath = %q, want %q", got, want)
	}
}

func TestResolveOutputPathExplicitFile(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "")
	got, err := ResolveOutputPath(res, "src/main.lua", "dist/out.lua")
	if err != nil {
		t.Fatal(err)
	}
	if want := "dist/out.lua"; got != want {
		t.Errorf("ResolveOutputPath = %q, want %q", got, want)
	}
}
