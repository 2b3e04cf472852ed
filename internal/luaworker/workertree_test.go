// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaworker

import (
	"testing"

	"lucerna.dev/lucerna/internal/luaconfig"
	"lucerna.dev/lucerna/internal/luaresource"
)

func TestWorkerTreeProcessResolvesRequireChain(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", `local util = require("./util")
return util`)
	res.Write("src/util.lua", "return {}")

	cfg, err := luaconfig.Decode([]byte(`{"generator": "dense", "rules": ["bundle"]}`))
	if err != nil {
		t.Fatal(err)
	}
	worker := &Worker{Resources: res, Config: cfg}
	tree := NewWorkerTree(worker)
	if err := tree.CollectWork(res, Options{Input: "src"}); err != nil {
		t.Fatal(err)
	}
	if err := tree.Process(false); err != nil {
		t.Fatal(err)
	}

	items := tree.Items()
	if len(items) != 2 {
		t.Fatalf("Items() has %d entries, want 2", len(items))
	}
	for _, item := range items {
		if item.Status != Done {
			t.Errorf("%s: Status = %v, want Done", item.SourcePath, item.Status)
		}
		if item.Result != nil && len(item.Result.Errors) > 0 {
			t.Errorf("%s: Errors = %v, want none", item.SourcePath, item.Result.Errors)
		}
	}
}

func TestWorkerTreeProcessDetectsCycle(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/a.lua", `local b = require("./b")
return b`)
	res.Write("src/b.lua", `local a = require("./a")
return a`)

	cfg, err := luaconfig.Decode([]byte(`{"rules": ["bundle"]}`))
	if err != nil {
		t.Fatal(err)
	}
	worker := &Worker{Resources: res, Config: cfg}
	tree := NewWorkerTree(worker)
	if err := tree.CollectWork(res, Options{Input: "src"}); err != nil {
		t.Fatal(err)
	}
	err = tree.Process(false)
	if _, ok := err.(*CyclicWorkError); !ok {
		t.Fatalf("Process err = %v (%T), want *CyclicWorkError", err, err)
	}
}

func TestWorkerTreeSourceChangedRestartsDependents(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", `local util = require("./util")
return util`)
	res.Write("src/util.lua", "return {}")

	cfg, err := luaconfig.Decode([]byte(`{"rules": ["bundle"]}`))
	if err != nil {
		t.Fatal(err)
	}
	worker := &Worker{Resources: res, Config: cfg}
	tree := NewWorkerTree(worker)
	if err := tree.CollectWork(res, Options{Input: "src"}); err != nil {
		t.Fatal(err)
	}
	if err := tree.Process(false); err != nil {
		t.Fatal(err)
	}

	tree.SourceChanged("src/util.lua")
	for _, item := range tree.Items() {
		if item.Status != NotStarted {
			t.Errorf("%s: Status = %v, want NotStarted after dependency changed", item.SourcePath, item.Status)
		}
	}
}

func TestWorkerTreeRemoveSource(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "return 1")

	cfg, err := luaconfig.Decode([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	worker := &Worker{Resources: res, Config: cfg}
	tree := NewWorkerTree(worker)
	if err := tree.CollectWork(res, Options{Input: "src"}); err != nil {
		t.Fatal(err)
	}
	out, ok := tree.RemoveSource("src/main.lua")
	if !ok {
		t.Fatal("RemoveSource returned ok=false")
	}
	if out != "src/main.lua" {
		t.Errorf("RemoveSource output path = %q, want %q", out, "src/main.lua")
	}
	if len(tree.Items()) != 0 {
		t.Errorf("Items() = %v, want empty after removal", tree.Items())
	}
}
