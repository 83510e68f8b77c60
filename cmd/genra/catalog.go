// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/client/debounce"
	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/internal/client/progress"
	"github.com/genra-app/genra/internal/client/section"
	"github.com/genra-app/genra/pkg/slice"
)

var (
	searchGenre       string
	searchSort        string
	searchPage        int
	searchInteractive bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search approved books",
	Long: `Search approved books by title.

With --interactive each line read from standard input replaces the query, and
only the last line typed within half a second is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchInteractive {
			return interactiveSearch(cmd.Context())
		}

		query := strings.Join(args, " ")
		page, err := findBooks(cmd.Context(), query)
		if err != nil {
			return err
		}
		if err := current.store.AddSearch(query); err != nil {
			current.logger.Warn("search_history_failed", "error", err)
		}
		printBooks(page)
		return nil
	},
}

func findBooks(ctx context.Context, query string) (*gateway.Page[gateway.Book], error) {
	return current.api.Books(ctx, gateway.BookQuery{
		Query:       query,
		Genre:       searchGenre,
		Sort:        searchSort,
		PageRequest: gateway.PageRequest{Page: searchPage},
	})
}

func interactiveSearch(ctx context.Context) error {
	executor := debounce.New(debounce.DefaultDelay, findBooks, func(result debounce.Result[*gateway.Page[gateway.Book]]) {
		switch {
		case result.Cleared:
			fmt.Println("(cleared)")
		case result.Err != nil:
			fmt.Fprintf(os.Stderr, "search %q failed: %v\n", result.Query, describe(result.Err))
		default:
			fmt.Printf("== %s\n", result.Query)
			printBooks(result.Value)
			if err := current.store.AddSearch(result.Query); err != nil {
				current.logger.Warn("search_history_failed", "error", err)
			}
		}
	})
	defer executor.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		executor.Input(scanner.Text())
	}
	executor.Flush()
	executor.Wait()
	current.logger.Debug("search_dispatched", "count", executor.Dispatched())
	return scanner.Err()
}

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the home dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := signedIn(cmd.Context()); err != nil {
			return err
		}

		dashboard := section.NewDashboard(current.api, 10, 5, current.logger)
		dashboard.Load(cmd.Context())

		if profile, ok := dashboard.Profile(); ok {
			fmt.Printf("Hello, %s\n\n", profile.FullName)
		}
		if rows, ok := dashboard.ContinueReading(); ok && len(rows) > 0 {
			fmt.Println("Continue reading")
			for _, row := range rows {
				fmt.Printf("  %-36s  %s, ch. %d %s\n", row.BookID, row.BookTitle, row.SequenceNumber, row.ChapterTitle)
			}
			fmt.Println()
		}
		if feed, ok := dashboard.Feed(); ok {
			fmt.Println("For you")
			printBooks(feed)
			fmt.Println()
		}
		if genres, ok := dashboard.Genres(); ok {
			names := slice.Map(genres, func(genre gateway.Genre) string { return fmt.Sprintf("%s(%d)", genre.Slug, genre.ID) })
			fmt.Printf("Genres: %s\n", strings.Join(names, " "))
		}

		for _, name := range dashboard.Failed() {
			fmt.Fprintf(os.Stderr, "Could not load %s: %v\n", name, describe(dashboard.State(name).Err))
		}
		return nil
	},
}

var bookCmd = &cobra.Command{
	Use:   "book <book-id>",
	Short: "Show a book, its chapters and where you left off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		book, err := current.api.Book(ctx, args[0])
		if err != nil {
			return err
		}
		chapters, err := current.api.Chapters(ctx, book.ID)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", book.Title)
		fmt.Printf("  by %s · %s · %d views · %.1f★ (%d)\n", book.AuthorName, strings.Join(genreNames(book.Genres), ", "), book.ViewsCount, book.Rating, book.RatingCount)
		if book.Description != "" {
			fmt.Printf("\n%s\n", book.Description)
		}

		if current.api.Tokens().Session() != nil {
			recorder := progress.NewRecorder(current.api, progress.Options{Logger: current.logger})
			if position, err := recorder.Resume(ctx, book.ID); err == nil && position != nil {
				fmt.Printf("\nContinue: chapter %d, %s (%s)\n", position.SequenceNumber, position.ChapterTitle, position.ChapterID)
			}
		}

		fmt.Println("\nChapters")
		for _, chapter := range chapters {
			lock := ""
			if chapter.IsLocked {
				lock = " [locked]"
			}
			fmt.Printf("  %3d  %s  %s%s\n", chapter.SequenceNumber, chapter.ID, chapter.Title, lock)
		}
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <chapter-id>",
	Short: "Print a chapter and record your progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		chapter, err := current.api.Chapter(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Chapter %d: %s\n\n", chapter.SequenceNumber, chapter.Title)
		if chapter.IsLocked && chapter.Content == "" {
			fmt.Println("This chapter is locked.")
		} else {
			fmt.Println(chapter.Content)
		}

		if current.api.Tokens().Session() == nil {
			return nil
		}
		recorder := progress.NewRecorder(current.api, progress.Options{
			Logger:  current.logger,
			OnError: func(err error) { fmt.Fprintf(os.Stderr, "progress not saved: %v\n", err) },
		})
		recorder.Visit(ctx, chapter.BookID, chapter.ID)
		recorder.Wait()
		return nil
	},
}

var interestsOnboarding bool

var interestsCmd = &cobra.Command{
	Use:   "interests [genre-id...]",
	Short: "List or replace followed genres",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		var (
			interests []gateway.Interest
			err       error
		)
		if len(args) == 0 {
			interests, err = current.api.Interests(ctx)
		} else {
			ids := make([]int, 0, len(args))
			for _, arg := range args {
				id, convErr := strconv.Atoi(arg)
				if convErr != nil {
					return fmt.Errorf("genre id %q is not a number", arg)
				}
				ids = append(ids, id)
			}
			interests, err = current.api.SetInterests(ctx, ids, interestsOnboarding)
		}
		if err != nil {
			return err
		}

		for _, interest := range interests {
			fmt.Printf("  %3d  %s\n", interest.GenreID, interest.Name)
		}
		return nil
	},
}

var historyClear bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyClear {
			return current.store.ClearSearchHistory()
		}
		queries, err := current.store.SearchHistory()
		if err != nil {
			return err
		}
		for _, query := range queries {
			fmt.Println(query)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchGenre, "genre", "", "Genre slug")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "rating, views or newest")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Page number")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "Read queries from standard input")

	interestsCmd.Flags().BoolVar(&interestsOnboarding, "onboarding", false, "Require at least three genres")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Forget every search")

	rootCmd.AddCommand(searchCmd, homeCmd, bookCmd, readCmd, interestsCmd, historyCmd)
}

func printBooks(page *gateway.Page[gateway.Book]) {
	if page == nil || len(page.Items) == 0 {
		fmt.Println("  (no books)")
		return
	}
	for _, book := range page.Items {
		fmt.Printf("  %s  %-40s %.1f★ %6d views\n", book.ID, book.Title, book.Rating, book.ViewsCount)
	}
	if page.Meta.TotalPages > 1 {
		fmt.Printf("  page %d of %d (%d books)\n", page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
	}
}

func genreNames(genres []gateway.Genre) []string {
	return slice.Map(genres, func(genre gateway.Genre) string { return genre.Name })
}
