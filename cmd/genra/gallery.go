// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Images saved on this device",
}

var galleryAddCmd = &cobra.Command{
	Use:   "add <file> [name]",
	Short: "Save an image to the gallery",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		detected := mimetype.Detect(data)
		if !detected.Is("image/png") && !detected.Is("image/jpeg") && !detected.Is("image/webp") && !detected.Is("image/gif") {
			return fmt.Errorf("%s is %s, not an image", args[0], detected.String())
		}

		name := filepath.Base(args[0])
		if len(args) == 2 {
			name = args[1]
		}
		if err := current.store.SaveImage(name, data); err != nil {
			return err
		}
		fmt.Printf("Saved %s (%s, %d bytes)\n", name, detected.String(), len(data))
		return nil
	},
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := current.store.Images()
		if err != nil {
			return err
		}
		for _, image := range images {
			fmt.Printf("  %s  %s\n", image.SavedAt.Local().Format("2006-01-02 15:04"), image.Name)
		}
		return nil
	},
}

var galleryExportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Write a saved image to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := current.store.Image(args[0])
		if err != nil {
			return err
		}
		return os.WriteFile(args[1], image.Data, 0o644)
	},
}

func init() {
	galleryCmd.AddCommand(galleryAddCmd, galleryListCmd, galleryExportCmd)
	rootCmd.AddCommand(galleryCmd)
}
