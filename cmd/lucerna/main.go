// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

// Command lucerna is the CLI front end for the transformation engine:
// the "process"/"minify"/"convert"/"generate-json-schema" verbs of §6.
// Argument parsing, logging setup, and signal handling live here as the
// thin external shell the core (internal/luaworker and friends) never
// depends on.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"zombiezen.com/go/bass/sigterm"
	"zombiezen.com/go/log"
)

func main() {
	rootCommand := &cobra.Command{
		Use:           "lucerna",
		Short:         "Lua/Luau source-to-source transformation engine",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	showDebug := rootCommand.PersistentFlags().Bool("verbose", false, "show debug output")
	rootCommand.PersistentFlags().Lookup("verbose").Shorthand = "v"
	rootCommand.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogging(*showDebug)
		return nil
	}

	rootCommand.AddCommand(
		newProcessCommand(),
		newMinifyCommand(),
		newConvertCommand(),
		newGenerateJSONSchemaCommand(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		initLogging(*showDebug)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}

var initLogOnce sync.Once

func initLogging(showDebug bool) {
	initLogOnce.Do(func() {
		minLogLevel := log.Info
		if showDebug {
			minLogLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLogLevel,
			Output: log.New(os.Stderr, "lucerna: ", log.StdFlags, nil),
		})
	})
}
