// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/internal/client/session"
	"github.com/genra-app/genra/pkg/slice"
)

var (
	passwordFlag string
	rememberFlag bool
)

var loginCmd = &cobra.Command{
	Use:   "login [username-or-email]",
	Short: "Sign in with a password",
	Long: `Sign in with a username or email.

Without an argument the remembered login is used. The password is read from
--password, GENRA_PASSWORD or standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		login := ""
		if len(args) == 1 {
			login = args[0]
		} else if remembered, err := current.store.RememberedLogin(); err == nil {
			login = remembered.Login
		}
		if login == "" {
			return fmt.Errorf("a username or email is required")
		}

		password, err := readPassword()
		if err != nil {
			return err
		}

		profile, err := current.sessions.SignIn(cmd.Context(), login, password, rememberFlag)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", profile.Username, profile.Email)
		printRoute()
		return nil
	},
}

var (
	registerEmail string
	registerName  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}

		profile, err := current.sessions.SignUp(cmd.Context(), registerEmail, password, registerName)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s! Your username is %s.\n", profile.FullName, profile.Username)
		printRoute()
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and revoke the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.sessions.SignOut(cmd.Context()); err != nil {
			current.logger.Warn("logout_failed", "error", err)
		}
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s (@%s)\n", profile.FullName, profile.Username)
		fmt.Printf("  Email:    %s\n", profile.Email)
		fmt.Printf("  Role:     %s\n", profile.Role)
		fmt.Printf("  Verified: %t\n", profile.IsVerified)
		fmt.Printf("  Coins:    %d\n", profile.Coins)
		names := slice.Map(profile.Interests, func(interest gateway.Interest) string { return interest.Name })
		fmt.Printf("  Genres:   %s\n", strings.Join(names, ", "))
		printRoute()
		return nil
	},
}

var (
	oauthRedirect string
	oauthFlow     string
)

var oauthURLCmd = &cobra.Command{
	Use:   "oauth-url <provider>",
	Short: "Print the browser URL that starts an OAuth sign-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(current.sessions.AuthorizeURL(args[0], oauthRedirect, oauthFlow))
		return nil
	},
}

var oauthCompleteCmd = &cobra.Command{
	Use:   "oauth-complete <callback-url>",
	Short: "Finish an OAuth sign-in from the redirect URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := current.sessions.CompleteOAuth(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", profile.Username, profile.Email)
		printRoute()
		return nil
	},
}

var (
	resetEmail string
	resetCode  string
)

var passwordResetCmd = &cobra.Command{
	Use:   "password-reset",
	Short: "Request a reset code, or set a new password with --code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if resetCode == "" {
			if err := current.sessions.RequestPasswordOTP(cmd.Context(), resetEmail); err != nil {
				return err
			}
			fmt.Println("If the address is registered, a code is on its way")
			return nil
		}

		password, err := readPassword()
		if err != nil {
			return err
		}
		if err := current.sessions.ResetPassword(cmd.Context(), resetEmail, resetCode, password); err != nil {
			return err
		}
		fmt.Println("Password updated; sign in again")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (default: GENRA_PASSWORD or stdin)")
	loginCmd.Flags().BoolVar(&rememberFlag, "remember", false, "Keep the login on this device")

	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (default: GENRA_PASSWORD or stdin)")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("name")

	oauthURLCmd.Flags().StringVar(&oauthRedirect, "redirect", "genra://auth", "Where the browser returns")
	oauthURLCmd.Flags().StringVar(&oauthFlow, "flow", gateway.FlowCode, "code or implicit")

	passwordResetCmd.Flags().StringVar(&resetEmail, "email", "", "Account email")
	passwordResetCmd.Flags().StringVar(&resetCode, "code", "", "Code from the reset email")
	passwordResetCmd.Flags().StringVar(&passwordFlag, "password", "", "New password (default: GENRA_PASSWORD or stdin)")
	passwordResetCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, oauthURLCmd, oauthCompleteCmd, passwordResetCmd)
}

func readPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}
	if env := os.Getenv("GENRA_PASSWORD"); env != "" {
		return env, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printRoute() {
	switch current.sessions.Route() {
	case session.RoutePreferences:
		fmt.Printf("Pick at least %d genres: genra interests <genre-id>...\n", session.MinInterests)
	case session.RouteHome:
		fmt.Println("Run `genra home` to see your feed")
	}
}
