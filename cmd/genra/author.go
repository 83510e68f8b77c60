// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/pkg/pointer"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage the books you write",
}

var booksPage int

var booksMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your books in every status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		page, err := current.api.MyBooks(ctx, gateway.PageRequest{Page: booksPage})
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			fmt.Println("  (no books)")
			return nil
		}
		for _, book := range page.Items {
			fmt.Printf("  %s  %-40s %-10s %s\n", book.ID, book.Title, book.Status, strings.Join(genreNames(book.Genres), ", "))
		}
		return nil
	},
}

var (
	draftDescription string
	draftCover       string
	draftPrice       int
	draftGenres      []int
)

var booksCreateCmd = &cobra.Command{
	Use:   "create <title...>",
	Short: "Start a new draft",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		book, err := current.api.CreateBook(ctx, gateway.BookDraft{
			Title:       strings.Join(args, " "),
			Description: draftDescription,
			CoverURL:    draftCover,
			Price:       draftPrice,
			Genres:      draftGenres,
		})
		if err != nil {
			return err
		}
		printBookState(book)
		return nil
	},
}

var booksUpdateCmd = &cobra.Command{
	Use:   "update <book-id>",
	Short: "Change a draft; only the flags you pass are sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		var changes gateway.BookChanges
		if flags.Changed("title") {
			title, _ := flags.GetString("title")
			changes.Title = pointer.To(title)
		}
		if flags.Changed("description") {
			changes.Description = pointer.To(draftDescription)
		}
		if flags.Changed("cover") {
			changes.CoverURL = pointer.To(draftCover)
		}
		if flags.Changed("price") {
			changes.Price = pointer.To(draftPrice)
		}
		if flags.Changed("genre") {
			changes.Genres = draftGenres
		}
		if changes.Title == nil && changes.Description == nil && changes.CoverURL == nil &&
			changes.Price == nil && changes.Genres == nil {
			return fmt.Errorf("nothing to change")
		}

		if _, err := signedIn(ctx); err != nil {
			return err
		}
		book, err := current.api.UpdateBook(ctx, args[0], changes)
		if err != nil {
			return err
		}
		printBookState(book)
		return nil
	},
}

var booksSubmitCmd = &cobra.Command{
	Use:   "submit <book-id>",
	Short: "Send a draft to review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		book, err := current.api.SubmitBook(ctx, args[0])
		if err != nil {
			return err
		}
		printBookState(book)
		return nil
	},
}

func printBookState(book *gateway.Book) {
	fmt.Printf("%s  %s  [%s]\n", book.ID, book.Title, book.Status)
}

// # Administration

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderation commands for administrators",
}

var banReason string

var adminBanCmd = &cobra.Command{
	Use:   "ban <user-id>",
	Short: "Suspend an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}
		if err := current.api.BanUser(ctx, args[0], banReason); err != nil {
			return err
		}
		fmt.Printf("Suspended %s\n", args[0])
		return nil
	},
}

var adminUnbanCmd = &cobra.Command{
	Use:   "unban <user-id>",
	Short: "Lift a suspension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}
		if err := current.api.UnbanUser(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Reinstated %s\n", args[0])
		return nil
	},
}

var reviewReject bool

var adminReviewCmd = &cobra.Command{
	Use:   "review <book-id>",
	Short: "Approve a pending book, or reject it with --reject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		book, err := current.api.ReviewBook(ctx, args[0], !reviewReject)
		if err != nil {
			return err
		}
		printBookState(book)
		return nil
	},
}

func init() {
	booksMineCmd.Flags().IntVar(&booksPage, "page", 1, "Page number")

	for _, command := range []*cobra.Command{booksCreateCmd, booksUpdateCmd} {
		command.Flags().StringVar(&draftDescription, "description", "", "Book description")
		command.Flags().StringVar(&draftCover, "cover", "", "Cover image URL")
		command.Flags().IntVar(&draftPrice, "price", 0, "Price in coins; 0 is free")
		command.Flags().IntSliceVar(&draftGenres, "genre", nil, "Genre id, repeatable")
	}
	booksUpdateCmd.Flags().String("title", "", "New title")
	booksCmd.AddCommand(booksMineCmd, booksCreateCmd, booksUpdateCmd, booksSubmitCmd)

	adminBanCmd.Flags().StringVar(&banReason, "reason", "", "Shown to the suspended reader")
	adminReviewCmd.Flags().BoolVar(&reviewReject, "reject", false, "Reject instead of approving")
	adminCmd.AddCommand(adminBanCmd, adminUnbanCmd, adminReviewCmd)

	rootCmd.AddCommand(booksCmd, adminCmd)
}
