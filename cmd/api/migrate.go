// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/platform/config"
	"github.com/genra-app/genra/internal/platform/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDatabase(".env")
		if err != nil {
			return err
		}
		return migration.NewRunner(cfg.DatabaseURL, cfg.MigrationPath, newLogger(false)).Up()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back the last N migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 1 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = parsed
		}

		cfg, err := config.LoadDatabase(".env")
		if err != nil {
			return err
		}
		return migration.NewRunner(cfg.DatabaseURL, cfg.MigrationPath, newLogger(false)).Down(steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDatabase(".env")
		if err != nil {
			return err
		}
		status, err := migration.NewRunner(cfg.DatabaseURL, cfg.MigrationPath, newLogger(false)).Version()
		if err != nil {
			return err
		}

		state := "clean"
		if status.Dirty {
			state = "dirty"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", status.Version, state)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
