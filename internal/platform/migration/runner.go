// Copyright (c) 2026 GenrA. All rights reserved.

// Package migration wraps golang-migrate for the SQL files in data/migrations.
// The server applies pending migrations at startup; the CLI can also step down
// and report the schema version.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Runner applies the migrations found under a directory to one database.
type Runner struct {
	dsn    string
	path   string
	logger *slog.Logger
}

// Status is the schema version recorded by golang-migrate. Version 0 means
// no migration has been applied yet.
type Status struct {
	Version uint
	Dirty   bool
}

// NewRunner builds a [Runner]. The DSN may use the postgres:// or postgresql:// scheme.
func NewRunner(dsn, path string, logger *slog.Logger) *Runner {
	return &Runner{dsn: toPgx5(dsn), path: path, logger: logger}
}

// RunUp applies every pending migration.
func RunUp(dsn, path string, logger *slog.Logger) error {
	return NewRunner(dsn, path, logger).Up()
}

/*
Up applies every pending migration.

Returns:
  - error: A dirty schema is refused; it needs a manual fix before any further migration
*/
func (runner *Runner) Up() error {
	return runner.with(func(migrator *migrate.Migrate) error {
		before, err := version(migrator)
		if err != nil {
			return err
		}
		if before.Dirty {
			return fmt.Errorf("migration_dirty: version %d needs a manual fix", before.Version)
		}

		err = migrator.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			runner.logger.Info("migration_up_to_date", slog.Uint64("version", uint64(before.Version)))
			return nil
		}
		if err != nil {
			return fmt.Errorf("migration_up_failed: %w", err)
		}

		after, _ := version(migrator)
		runner.logger.Info("migration_applied",
			slog.Uint64("from_version", uint64(before.Version)),
			slog.Uint64("to_version", uint64(after.Version)),
		)
		return nil
	})
}

// Down rolls back steps migrations, or all of them when steps <= 0.
func (runner *Runner) Down(steps int) error {
	return runner.with(func(migrator *migrate.Migrate) error {
		var err error
		if steps > 0 {
			err = migrator.Steps(-steps)
		} else {
			err = migrator.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration_down_failed: %w", err)
		}

		after, _ := version(migrator)
		runner.logger.Info("migration_rolled_back", slog.Int("steps", steps), slog.Uint64("to_version", uint64(after.Version)))
		return nil
	})
}

// Version reports the current schema version.
func (runner *Runner) Version() (Status, error) {
	var status Status
	err := runner.with(func(migrator *migrate.Migrate) error {
		var err error
		status, err = version(migrator)
		return err
	})
	return status, err
}

func (runner *Runner) with(fn func(migrator *migrate.Migrate) error) error {
	migrator, err := migrate.New("file://"+runner.path, runner.dsn)
	if err != nil {
		return fmt.Errorf("migration_init_failed: %w", err)
	}
	migrator.Log = migrateLogger{logger: runner.logger}

	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if err := errors.Join(sourceErr, databaseErr); err != nil {
			runner.logger.Error("migration_close_failed", slog.Any("error", err))
		}
	}()
	return fn(migrator)
}

func version(migrator *migrate.Migrate) (Status, error) {
	current, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("migration_version_failed: %w", err)
	}
	return Status{Version: current, Dirty: dirty}, nil
}

// toPgx5 rewrites postgres URLs to the pgx5:// scheme the golang-migrate driver registers.
func toPgx5(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

type migrateLogger struct {
	logger *slog.Logger
}

func (adapter migrateLogger) Printf(format string, args ...any) {
	adapter.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (adapter migrateLogger) Verbose() bool { return false }
