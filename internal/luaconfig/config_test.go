// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lucerna.dev/lucerna/internal/luagen"
)

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generator != luagen.DefaultParameters() {
		t.Errorf("Generator = %+v, want default", cfg.Generator)
	}
	if len(cfg.Rules) != 0 {
		t.Errorf("Rules = %v, want empty", cfg.Rules)
	}
	if cfg.Bundle != nil {
		t.Errorf("Bundle = %+v, want nil", cfg.Bundle)
	}
}

func TestDecodeGeneratorAndRules(t *testing.T) {
	cfg, err := Decode([]byte(`{
		"generator": "dense",
		"rules": ["remove_unused_while"]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generator.Style != luagen.Dense {
		t.Errorf("Generator.Style = %v, want Dense", cfg.Generator.Style)
	}
	if len(cfg.Rules) != 1 || cfg.Rules[0].Name() != "remove_unused_while" {
		t.Errorf("Rules = %v, want [remove_unused_while]", cfg.Rules)
	}
}

func TestDecodeRejectsBothRulesAndProcessAlias(t *testing.T) {
	_, err := Decode([]byte(`{"rules": [], "process": []}`))
	if err == nil {
		t.Error("Decode succeeded, want error for conflicting rules/process")
	}
}

func TestDecodeRejectsUnknownMember(t *testing.T) {
	_, err := Decode([]byte(`{"bogus": true}`))
	if err == nil {
		t.Error("Decode succeeded, want error for unknown member")
	}
}

func TestDecodeBundle(t *testing.T) {
	cfg, err := Decode([]byte(`{"bundle": {"excludes": ["vendor/**"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bundle == nil {
		t.Fatal("Bundle = nil, want non-nil")
	}
	if diff := cmp.Diff([]string{"vendor/**"}, cfg.Bundle.Excludes); diff != "" {
		t.Errorf("Bundle.Excludes (-want +got):\n%s", diff)
	}
}

func TestHashChangesWithContent(t *testing.T) {
	a, err := Decode([]byte(`{"generator": "dense"}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode([]byte(`{"generator": "readable"}`))
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() == b.Hash() {
		t.Error("Hash() collided for different configurations")
	}
	c, err := Decode([]byte(`{"generator": "dense"}`))
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() != c.Hash() {
		t.Error("Hash() differed for identical configurations")
	}
}

func TestDiscoverNoConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Discover(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generator != luagen.DefaultParameters() {
		t.Errorf("Generator = %+v, want default", cfg.Generator)
	}
}

func TestDiscoverExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	if err := os.WriteFile(path, []byte(`{"generator": "dense"}`), 0o666); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(dir, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generator.Style != luagen.Dense {
		t.Errorf("Generator.Style = %v, want Dense", cfg.Generator.Style)
	}
}

func TestDiscoverRejectsMultipleDefaults(t *testing.T) {
	dir := t.TempDir()
	for _, name := range DefaultConfigNames {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0o666); err != nil {
			t.Fatal(err)
		}
	}
	_, err := Discover(dir, "")
	if _, ok := err.(*ConfigurationError); !ok {
		t.Errorf("Discover err = %v (%T), want *ConfigurationError", err, err)
	}
}
