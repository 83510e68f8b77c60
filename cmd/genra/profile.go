// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/pkg/pointer"
)

var profileAvatar string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edit your public profile",
	Long: `Edit your public profile. Only the flags you pass are changed.

	genra profile --username night_owl --bio "Reads at 3am"
	genra profile --avatar me.png`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := signedIn(ctx); err != nil {
			return err
		}

		var changes gateway.ProfileChanges
		flags := cmd.Flags()
		for name, target := range map[string]**string{
			"name":     &changes.FullName,
			"username": &changes.Username,
			"bio":      &changes.Bio,
			"website":  &changes.Website,
		} {
			if flags.Changed(name) {
				value, _ := flags.GetString(name)
				*target = pointer.To(value)
			}
		}

		if changes.Username != nil {
			available, err := current.api.UsernameAvailable(ctx, *changes.Username)
			if err != nil {
				return err
			}
			if !available {
				return fmt.Errorf("username %q is taken", *changes.Username)
			}
		}

		var (
			profile *gateway.Profile
			err     error
		)
		if changes != (gateway.ProfileChanges{}) {
			if profile, err = current.api.UpdateProfile(ctx, changes); err != nil {
				return err
			}
		}
		if profileAvatar != "" {
			image, err := os.ReadFile(profileAvatar)
			if err != nil {
				return err
			}
			if profile, err = current.api.UploadAvatar(ctx, image); err != nil {
				return err
			}
		}
		if profile == nil {
			if profile, err = current.api.Profile(ctx); err != nil {
				return err
			}
		}

		fmt.Printf("%s (@%s)\n", profile.FullName, profile.Username)
		fmt.Printf("  Bio:     %s\n", profile.Bio)
		fmt.Printf("  Website: %s\n", profile.Website)
		fmt.Printf("  Avatar:  %s\n", profile.AvatarURL)
		return nil
	},
}

func init() {
	profileCmd.Flags().String("name", "", "Full name")
	profileCmd.Flags().String("username", "", "Username")
	profileCmd.Flags().String("bio", "", "Short bio")
	profileCmd.Flags().String("website", "", "Website URL")
	profileCmd.Flags().StringVar(&profileAvatar, "avatar", "", "Image file to upload as avatar")

	rootCmd.AddCommand(profileCmd)
}
