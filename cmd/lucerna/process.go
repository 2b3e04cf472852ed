// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lucerna.dev/lucerna/internal/luaconfig"
	"lucerna.dev/lucerna/internal/luaresource"
	"lucerna.dev/lucerna/internal/luaworker"
)

type processOptions struct {
	input      string
	output     string
	configPath string
	failFast   bool
}

func newProcessCommand() *cobra.Command {
	opts := new(processOptions)
	c := &cobra.Command{
		Use:                   "process <input> [<output>]",
		Short:                 "apply the configured rules to a file or directory",
		Args:                  cobra.RangeArgs(1, 2),
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.Flags().StringVar(&opts.configPath, "config", "", "`path` to a darklua configuration file")
	c.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop at the first file error")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.input = args[0]
		if len(args) > 1 {
			opts.output = args[1]
		}
		return runProcess(cmd.Context(), opts)
	}
	return c
}

func runProcess(ctx context.Context, opts *processOptions) error {
	res := luaresource.FileSystem{}
	cfg, err := luaconfig.Discover(".", opts.configPath)
	if err != nil {
		return err
	}
	worker := &luaworker.Worker{Resources: res, Config: cfg}
	items, err := luaworker.Run(ctx, res, worker, luaworker.Options{
		Input:    opts.input,
		Output:   opts.output,
		Config:   cfg,
		FailFast: opts.failFast,
	})
	if err != nil {
		return err
	}
	failed := 0
	for _, item := range items {
		if item.Result != nil && len(item.Result.Errors) > 0 {
			failed++
			for _, e := range item.Result.Errors {
				fmt.Printf("%s: %v\n", item.SourcePath, e)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to process", failed)
	}
	return nil
}
