// Copyright (c) 2026 GenrA. All rights reserved.

/*
Command genra-api runs the GenrA HTTP API and its maintenance tasks.

	genra-api [serve]             start the server (default)
	genra-api migrate up          apply pending migrations
	genra-api migrate down [N]    roll back N migrations (default 1)
	genra-api seed --books 20     insert demo content

Configuration comes from the environment and an optional .env file.
*/
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/platform/constants"
)

// Version information, set via ldflags during build.
var (
	Version = constants.AppVersion
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "genra-api",
	Short:         "GenrA reading platform API",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var debugLogging bool

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("genra-api %s (commit %s)\n", Version, Commit))
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// newLogger builds the JSON logger every command writes to.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug || debugLogging {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(logger)
	return logger
}
