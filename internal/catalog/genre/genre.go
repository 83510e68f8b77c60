// Copyright (c) 2026 GenrA. All rights reserved.

// Package genre serves the fixed list of book genres.
package genre

import "context"

// Genre is a catalogue category used for onboarding, filtering and the feed.
type Genre struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sort_order"`
}

// Repository lists genres from persistent storage.
type Repository interface {
	List(context context.Context) ([]Genre, error)
}
