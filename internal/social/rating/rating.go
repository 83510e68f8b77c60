// Copyright (c) 2026 GenrA. All rights reserved.

// Package rating stores per-reader star ratings and keeps the book aggregate in step.
package rating

import (
	"context"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/sec"
)

const (
	MinStars = 1
	MaxStars = 5
)

// State is the caller's rating together with the book aggregate. Stars is 0
// when the caller has not rated the book.
type State struct {
	BookID      string  `json:"book_id"`
	Stars       int     `json:"stars"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// Aggregate is the recomputed average for a book.
type Aggregate struct {
	Rating      float64
	RatingCount int
}

// Repository persists ratings. Put and Delete recompute the aggregate in the
// same transaction as the write.
type Repository interface {
	Find(context context.Context, userID, bookID string) (int, error)
	Put(context context.Context, userID, bookID string, stars int) (Aggregate, error)
	Delete(context context.Context, userID, bookID string) (Aggregate, error)
}

// BookLookup resolves a book with visibility rules applied.
type BookLookup interface {
	Get(context context.Context, id string, viewer *sec.AuthClaims) (*book.Book, error)
}
