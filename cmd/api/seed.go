// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/platform/config"
	pgstore "github.com/genra-app/genra/internal/platform/postgres"
	"github.com/genra-app/genra/internal/seed"
	"github.com/genra-app/genra/internal/users/auth"
)

var seedOptions seed.Options

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo authors, approved books and chapters",
	Long: `Insert demo authors, approved books and chapters.

The same --seed value always produces the same catalogue. Authors are matched
by email, so re-running reuses them and only adds books.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedOptions.Books < 0 || seedOptions.ChaptersPerBook < 0 {
			return fmt.Errorf("--books and --chapters must not be negative")
		}

		cfg, err := config.LoadDatabase(".env")
		if err != nil {
			return err
		}
		log := newLogger(false)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.PoolOptions(), log)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		catalog := wireCatalog(pool, nil, log)
		seeder := seed.New(auth.NewUserRepository(pool), catalog.book, catalog.chapter, catalog.genre, log)

		result, err := seeder.Run(ctx, seedOptions)
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d authors, %d books, %d chapters\n", result.Authors, result.Books, result.Chapters)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOptions.Books, "books", 20, "Number of books to create")
	seedCmd.Flags().IntVar(&seedOptions.Authors, "authors", 4, "Number of author accounts")
	seedCmd.Flags().IntVar(&seedOptions.ChaptersPerBook, "chapters", 6, "Chapters per book")
	seedCmd.Flags().Int64Var(&seedOptions.Seed, "seed", 1, "Random seed")
	seedCmd.Flags().StringVar(&seedOptions.Password, "password", "GenrA-demo-1", "Password of every seeded author")
}
