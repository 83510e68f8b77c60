// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/client/gateway"
)

var libraryPage int

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List the books saved to your library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		page, err := current.api.Bookmarks(ctx, gateway.PageRequest{Page: libraryPage})
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			fmt.Println("Your library is empty")
			return nil
		}
		for _, bookmark := range page.Items {
			fmt.Printf("  %s  %-40s %-20s saved %s\n", bookmark.BookID, bookmark.Title, bookmark.AuthorName,
				bookmark.BookmarkedAt.Format("2006-01-02"))
		}
		if page.Meta.TotalPages > 1 {
			fmt.Printf("  page %d of %d\n", page.Meta.Page, page.Meta.TotalPages)
		}
		return nil
	},
}

// # Sessions

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the devices signed in to your account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		devices, err := current.api.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, device := range devices {
			marker := " "
			if device.IsCurrent {
				marker = "*"
			}
			fmt.Printf("%s %s  %-15s %s  (expires %s)\n", marker, device.ID, device.IPAddress,
				device.UserAgent, device.ExpiresAt.Format("2006-01-02"))
		}
		return nil
	},
}

var sessionsRevokeOthers bool

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke [session-id]",
	Short: "Sign out one device, or every other device with --others",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if sessionsRevokeOthers == (len(args) == 1) {
			return fmt.Errorf("pass either a session id or --others")
		}
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		if sessionsRevokeOthers {
			if err := current.api.RevokeOtherSessions(ctx); err != nil {
				return err
			}
			fmt.Println("Signed out every other device")
			return nil
		}
		if err := current.api.RevokeSession(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Signed out %s\n", args[0])
		return nil
	},
}

// # Reading preferences

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change reader preferences",
	Long: `Show or change reader preferences. Only the flags you pass are changed.

	genra prefs --theme dark --font-size 18`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		prefs, err := current.api.Preferences(ctx)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		next := *prefs
		if flags.Changed("theme") {
			next.Theme, _ = flags.GetString("theme")
		}
		if flags.Changed("font-family") {
			next.FontFamily, _ = flags.GetString("font-family")
		}
		if flags.Changed("font-size") {
			next.FontSize, _ = flags.GetInt("font-size")
		}
		if flags.Changed("line-spacing") {
			next.LineSpacing, _ = flags.GetFloat64("line-spacing")
		}
		if next != *prefs {
			if prefs, err = current.api.UpdatePreferences(ctx, next); err != nil {
				return err
			}
		}

		fmt.Printf("Theme:        %s\n", prefs.Theme)
		fmt.Printf("Font:         %s %dpt\n", prefs.FontFamily, prefs.FontSize)
		fmt.Printf("Line spacing: %.1f\n", prefs.LineSpacing)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Show someone's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := current.api.PublicProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (@%s) · %s\n", profile.FullName, profile.Username, profile.Role)
		if profile.Bio != "" {
			fmt.Printf("  %s\n", profile.Bio)
		}
		if profile.Website != "" {
			fmt.Printf("  %s\n", profile.Website)
		}
		fmt.Printf("  Joined %s\n", profile.CreatedAt.Format("January 2006"))
		return nil
	},
}

func init() {
	libraryCmd.Flags().IntVar(&libraryPage, "page", 1, "Page number")

	sessionsRevokeCmd.Flags().BoolVar(&sessionsRevokeOthers, "others", false, "Sign out every device except this one")
	sessionsCmd.AddCommand(sessionsRevokeCmd)

	prefsCmd.Flags().String("theme", "", "light, dark or sepia")
	prefsCmd.Flags().String("font-family", "", "Reader font family")
	prefsCmd.Flags().Int("font-size", 0, "Reader font size")
	prefsCmd.Flags().Float64("line-spacing", 0, "Reader line spacing")

	rootCmd.AddCommand(libraryCmd, sessionsCmd, prefsCmd, userCmd)
}
