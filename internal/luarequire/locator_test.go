// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luarequire

import (
	"testing"

	"lucerna.dev/lucerna/internal/luaresource"
)

func TestPathLocatorResolve(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "")
	res.Write("src/util.lua", "")
	res.Write("src/pkg/init.lua", "")
	res.Write("vendor/acme/module.luau", "")

	loc := &PathLocator{Sources: map[string]string{"@acme": "vendor/acme"}}

	tests := []struct {
		name     string
		from     string
		argument string
		want     string
	}{
		{"RelativeFile", "src/main.lua", "./util", "src/util.lua"},
		{"RelativeDirectory", "src/main.lua", "./pkg", "src/pkg/init.lua"},
		{"NamedSource", "src/main.lua", "@acme/module", "vendor/acme/module.luau"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := loc.Resolve(res, test.from, test.argument)
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", test.from, test.argument, got, test.want)
			}
		})
	}
}

func TestPathLocatorResolveNotFound(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "")
	loc := &PathLocator{}
	_, err := loc.Resolve(res, "src/main.lua", "./missing")
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("Resolve err = %v (%T), want *NotFoundError", err, err)
	}
}

func TestPathLocatorResolveRejectsBareName(t *testing.T) {
	res := luaresource.NewMemory()
	loc := &PathLocator{}
	if _, err := loc.Resolve(res, "src/main.lua", "util"); err == nil {
		t.Error("Resolve of bare module name succeeded, want error")
	}
}

func TestLuauLocatorResolve(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write(".luaurc", `{"aliases": {"shared": "lib/shared"}}`)
	res.Write("lib/shared/widgets.luau", "")
	res.Write("src/main.lua", "")

	loc := &LuauLocator{}
	got, err := loc.Resolve(res, "src/main.lua", "@shared/widgets")
	if err != nil {
		t.Fatal(err)
	}
	if want := "lib/shared/widgets.luau"; got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestRobloxLocatorResolve(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("game/ReplicatedStorage/Main.lua", "")
	res.Write("game/ReplicatedStorage/Sibling.lua", "")

	loc := &RobloxLocator{}
	got, err := loc.Resolve(res, "game/ReplicatedStorage/Main.lua", "script.Parent.Sibling")
	if err != nil {
		t.Fatal(err)
	}
	if want := "game/ReplicatedStorage/Sibling.lua"; got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestHybridLocatorTriesInOrder(t *testing.T) {
	res := luaresource.NewMemory()
	res.Write("src/main.lua", "")
	res.Write("src/util.lua", "")

	loc := &HybridLocator{Locators: []Locator{
		&LuauLocator{},
		&PathLocator{},
	}}
	got, err := loc.Resolve(res, "src/main.lua", "./util")
	if err != nil {
		t.Fatal(err)
	}
	if want := "src/util.lua"; got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestHybridLocatorAllFail(t *testing.T) {
	res := luaresource.NewMemory()
	loc := &HybridLocator{Locators: []Locator{&PathLocator{}}}
	if _, err := loc.Resolve(res, "src/main.lua", "./missing"); err == nil {
		t.Error("Resolve succeeded, want error")
	}
}
