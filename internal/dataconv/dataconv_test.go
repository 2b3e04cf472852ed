// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package dataconv

import (
	"testing"

	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luagen"
)

func generate(t *testing.T, expr luaast.Expression) string {
	t.Helper()
	block := &luaast.Block{Last: &luaast.ReturnStatement{Expressions: []luaast.Expression{expr}}}
	text, err := luagen.Generate(block, "", luagen.Parameters{Style: luagen.Dense})
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func TestToExpressionJSONPreservesOrder(t *testing.T) {
	expr, err := ToExpression(JSON, []byte(`{"b": 1, "a": 2, "c": [3, 4]}`))
	if err != nil {
		t.Fatal(err)
	}
	got := generate(t, expr)
	want := "return{b=1,a=2,c={3,4}}"
	if got != want {
		t.Errorf("generate = %q, want %q", got, want)
	}
}

func TestToExpressionYAMLPreservesOrder(t *testing.T) {
	expr, err := ToExpression(YAML, []byte("z: 1\ny: 2\nx: 3\n"))
	if err != nil {
		t.Fatal(err)
	}
	got := generate(t, expr)
	want := "return{z=1,y=2,x=3}"
	if got != want {
		t.Errorf("generate = %q, want %q", got, want)
	}
}

func TestToExpressionTOMLSortsKeys(t *testing.T) {
	expr, err := ToExpression(TOML, []byte("zebra = 1\napple = 2\n"))
	if err != nil {
		t.Fatal(err)
	}
	got := generate(t, expr)
	want := "return{apple=2,zebra=1}"
	if got != want {
		t.Errorf("generate = %q, want %q", got, want)
	}
}

func TestToExpressionIntegerVsFloat(t *testing.T) {
	expr, err := ToExpression(JSON, []byte(`[1, 2.5, -3]`))
	if err != nil {
		t.Fatal(err)
	}
	got := generate(t, expr)
	want := "return{1,2.5,-3}"
	if got != want {
		t.Errorf("generate = %q, want %q", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"json5", JSON, false},
		{"yaml", YAML, false},
		{"yml", YAML, false},
		{"toml", TOML, false},
		{"xml", "", true},
	}
	for _, test := range tests {
		got, err := ParseFormat(test.name)
		if (err != nil) != test.wantErr || (err == nil && got != test.want) {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q, err=%v", test.name, got, err, test.want, test.wantErr)
		}
	}
}
