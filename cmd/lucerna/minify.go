// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/spf13/cobra"

	"lucerna.dev/lucerna/internal/luagen"
	"lucerna.dev/lucerna/internal/luaparse"
)

func newMinifyCommand() *cobra.Command {
	var columnSpan int
	c := &cobra.Command{
		Use:                   "minify <input> <output>",
		Short:                 "rewrite a file with the dense generator",
		Args:                  cobra.ExactArgs(2),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.Flags().IntVar(&columnSpan, "column-span", 80, "maximum line width")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runMinify(args[0], args[1], columnSpan)
	}
	return c
}

func runMinify(input, output string, columnSpan int) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	block, err := luaparse.Parse(input, string(source))
	if err != nil {
		return err
	}
	text, err := luagen.Generate(block, string(source), luagen.Parameters{Style: luagen.Dense, ColumnSpan: columnSpan})
	if err != nil {
		return err
	}
	return os.WriteFile(output, []byte(text), 0o666)
}
