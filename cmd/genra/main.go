// Copyright (c) 2026 GenrA. All rights reserved.

/*
Command genra is a terminal client for the GenrA API.

	genra login alice --remember     sign in and keep the session on this device
	genra home                       feed, continue reading and genres
	genra search dragons --sort rating
	genra read <chapter-id>          print a chapter and record progress

The session and local data live in a bbolt file (--data, default
~/.genra/genra.db). The API origin comes from --api or GENRA_API.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/internal/client/localstore"
	"github.com/genra-app/genra/internal/client/session"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/constants"
)

// Version information, set via ldflags during build.
var (
	Version = constants.AppVersion
	Commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", describe(err))
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "genra",
	Short:             "GenrA reading client",
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: openApp,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

var (
	apiURL       string
	dataPath     string
	debugLogging bool
)

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("genra %s (commit %s)\n", Version, Commit))

	defaultAPI := os.Getenv("GENRA_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API origin (env GENRA_API)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", defaultDataPath(), "Local store file")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".genra", "genra.db")
	}
	return filepath.Join(home, ".genra", "genra.db")
}

// # Wiring

// app is what every command works with.
type app struct {
	logger   *slog.Logger
	store    *localstore.Store
	api      *gateway.Client
	sessions *session.Manager
}

var current *app

func openApp(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if debugLogging {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "genra-cli"))
	slog.SetDefault(logger)

	store, err := localstore.Open(dataPath, logger)
	if err != nil {
		return err
	}

	api := gateway.New(apiURL, gateway.Options{Tokens: store, Logger: logger})
	current = &app{
		logger:   logger,
		store:    store,
		api:      api,
		sessions: session.NewManager(api, store, logger),
	}
	return nil
}

func closeApp() error {
	if current == nil {
		return nil
	}
	err := current.store.Close()
	current = nil
	return err
}

// signedIn resumes the stored session and enforces the ban check every
// screen change would run.
func signedIn(ctx context.Context) (*gateway.Profile, error) {
	return current.sessions.Restore(ctx)
}

// describe turns API errors into one readable line.
func describe(err error) error {
	switch {
	case errors.Is(err, session.ErrSignedOut):
		return fmt.Errorf("not signed in: run `genra login`")
	case errors.Is(err, session.ErrAccountSuspended):
		return fmt.Errorf("this account is suspended")
	}

	var lines []string
	if apiErr, ok := gateway.AsAPIError(err); ok {
		for _, detail := range apiErr.Details {
			lines = append(lines, detail.Field+": "+detail.Message)
		}
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		for _, detail := range appErr.Details {
			lines = append(lines, detail.Field+": "+detail.Message)
		}
	}
	if len(lines) == 0 {
		return err
	}
	return fmt.Errorf("%s\n  %s", err.Error(), strings.Join(lines, "\n  "))
}
