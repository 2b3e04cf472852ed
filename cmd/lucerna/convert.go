// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lucerna.dev/lucerna/internal/dataconv"
	"lucerna.dev/lucerna/internal/luaast"
	"lucerna.dev/lucerna/internal/luagen"
)

func newConvertCommand() *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:                   "convert <input> [<output>]",
		Short:                 "convert a JSON/YAML/TOML data file to a Lua literal",
		Args:                  cobra.RangeArgs(1, 2),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.Flags().StringVar(&format, "format", "", "data format (json, yaml, toml); inferred from the input extension if omitted")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := ""
		if len(args) > 1 {
			output = args[1]
		}
		return runConvert(input, output, format)
	}
	return c
}

func runConvert(input, output, format string) error {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(input), ".")
	}
	f, err := dataconv.ParseFormat(format)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	expr, err := dataconv.ToExpression(f, data)
	if err != nil {
		return err
	}
	block := &luaast.Block{Last: &luaast.ReturnStatement{Expressions: []luaast.Expression{expr}}}
	text, err := luagen.Generate(block, "", luagen.Parameters{Style: luagen.Readable})
	if err != nil {
		return err
	}
	if output == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	return os.WriteFile(output, []byte(text), 0o666)
}
