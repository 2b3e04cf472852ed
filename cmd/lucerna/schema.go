// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"lucerna.dev/lucerna/internal/luaconfig"
)

func newGenerateJSONSchemaCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "generate-json-schema [<output>]",
		Short:                 "emit the JSON schema of the Configuration format",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(luaconfig.GenerateSchema(), "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if len(args) == 0 {
			_, err := os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(args[0], data, 0o666)
	}
	return c
}
