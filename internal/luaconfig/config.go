// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Package luaconfig loads and (de)serializes a darklua-style
// configuration: the generator choice, the ordered rule list, and the
// optional bundle configuration (§4.9's config discovery, §6's file
// format). Decoding follows the same hujson-standardize-then-jsonv2
// pipeline and RejectUnknownMembers policy the teacher's own global
// configuration loader uses, adapted to this module's schema.
package luaconfig

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/tailscale/hujson"

	"lucerna.dev/lucerna/internal/luabundle"
	"lucerna.dev/lucerna/internal/luagen"
	"lucerna.dev/lucerna/internal/luarequire"
	"lucerna.dev/lucerna/internal/luarules"
)

// DefaultConfigNames are the two file names auto-discovered in a
// project's working directory; it is a [ConfigurationError] for both to
// exist simultaneously.
var DefaultConfigNames = []string{".darklua.json", ".darklua.json5"}

// ConfigurationError reports an invalid configuration: a malformed file,
// two default configuration files present at once, or an unknown rule
// name or option.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Message }

// Configuration is the fully decoded configuration for one run: the
// generator style, the ordered rule pipeline, and an optional bundler.
type Configuration struct {
	Generator luagen.Parameters
	Rules     []luarules.Rule
	Bundle    *luabundle.Config

	// raw is retained for Hash, so the worker tree can detect a changed
	// configuration between incremental runs without re-decoding.
	raw []byte
}

// Hash returns a stable fingerprint of the decoded configuration, used by
// the WorkerTree to decide whether to reset every node between runs
// (§4.9 step 1).
func (c *Configuration) Hash() [32]byte {
	return sha256.Sum256(c.raw)
}

type wireConfiguration struct {
	Generator json.RawMessage `json:"generator,omitempty"`
	Rules     json.RawMessage `json:"rules,omitempty"`
	Process   json.RawMessage `json:"process,omitempty"` // deprecated alias for Rules
	Bundle    *wireBundle     `json:"bundle,omitempty"`
}

type wireBundle struct {
	RequireMode json.RawMessage `json:"require-mode,omitempty"`
	Excludes    []string        `json:"excludes,omitempty"`
}

// Decode parses a configuration document (JSON or JSON5/hujson).
func Decode(data []byte) (*Configuration, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	var wire wireConfiguration
	if err := jsonv2.Unmarshal(standardized, &wire, jsonv2.RejectUnknownMembers(true)); err != nil {
		return nil, &ConfigurationError{Message: err.Error()}
	}

	cfg := &Configuration{Generator: luagen.DefaultParameters(), raw: append([]byte(nil), standardized...)}

	if len(wire.Generator) > 0 {
		params, err := decodeGenerator(wire.Generator)
		if err != nil {
			return nil, &ConfigurationError{Message: err.Error()}
		}
		cfg.Generator = params
	}

	rulesData := wire.Rules
	if len(wire.Process) > 0 {
		if len(rulesData) > 0 {
			return nil, &ConfigurationError{Message: `configuration has both "rules" and its deprecated "process" alias`}
		}
		rulesData = wire.Process
	}
	if len(rulesData) > 0 {
		rules, err := luarules.DecodeRules(rulesData)
		if err != nil {
			return nil, &ConfigurationError{Message: err.Error()}
		}
		cfg.Rules = rules
	}

	if wire.Bundle != nil {
		mode := luarequire.Locator(&luarequire.PathLocator{})
		if len(wire.Bundle.RequireMode) > 0 {
			m, err := luarequire.DecodeMode(wire.Bundle.RequireMode)
			if err != nil {
				return nil, &ConfigurationError{Message: err.Error()}
			}
			mode = m
		}
		cfg.Bundle = &luabundle.Config{Mode: mode, Excludes: wire.Bundle.Excludes}
	}

	return cfg, nil
}

func decodeGenerator(data json.RawMessage) (luagen.Parameters, error) {
	trimmed := trimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return luagen.Parameters{}, err
		}
		return generatorByName(name, 0)
	}
	var obj struct {
		Name       string `json:"name"`
		ColumnSpan int    `json:"column_span"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return luagen.Parameters{}, err
	}
	return generatorByName(obj.Name, obj.ColumnSpan)
}

func generatorByName(name string, columnSpan int) (luagen.Parameters, error) {
	switch name {
	case "retain-lines", "":
		return luagen.Parameters{Style: luagen.RetainLines, ColumnSpan: columnSpan}, nil
	case "dense":
		return luagen.Parameters{Style: luagen.Dense, ColumnSpan: columnSpan}, nil
	case "readable":
		return luagen.Parameters{Style: luagen.Readable, ColumnSpan: columnSpan}, nil
	default:
		return luagen.Parameters{}, fmt.Errorf("unknown generator %q", name)
	}
}

func trimSpace(data json.RawMessage) json.RawMessage {
	i, j := 0, len(data)
	for i < j && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n' || data[i] == '\r') {
		i++
	}
	for j > i && (data[j-1] == ' ' || data[j-1] == '\t' || data[j-1] == '\n' || data[j-1] == '\r') {
		j--
	}
	return data[i:j]
}

// Discover finds the configuration file in dir, preferring an explicit
// path when one is given. It is a ConfigurationError for both
// DefaultConfigNames to exist in dir at once.
func Discover(dir, explicitPath string) (*Configuration, error) {
	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			return nil, err
		}
		return Decode(data)
	}
	var found []string
	for _, name := range DefaultConfigNames {
		p := dir + string(os.PathSeparator) + name
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return &Configuration{Generator: luagen.DefaultParameters(), raw: []byte("{}")}, nil
	case 1:
		data, err := os.ReadFile(found[0])
		if err != nil {
			return nil, err
		}
		return Decode(data)
	default:
		return nil, &ConfigurationError{Message: fmt.Sprintf("multiple default configuration files present: %v", found)}
	}
}
