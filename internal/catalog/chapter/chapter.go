// Copyright (c) 2026 GenrA. All rights reserved.

// Package chapter manages the ordered chapters of a book.
package chapter

import (
	"context"
	"time"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/sec"
)

// Chapter is one readable unit of a book. Content is empty in listings and
// for locked chapters the caller does not own.
type Chapter struct {
	ID             string    `json:"id"`
	BookID         string    `json:"book_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content,omitempty"`
	SequenceNumber int       `json:"sequence_number"`
	IsLocked       bool      `json:"locked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Draft carries the fields of a new chapter.
type Draft struct {
	Title          string
	Content        string
	SequenceNumber int
	IsLocked       bool
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Title          *string
	Content        *string
	SequenceNumber *int
	IsLocked       *bool
}

// # Data Access

// Repository defines the data access contract for chapters.
type Repository interface {

	/*
		ListByBook returns the chapters of a book ordered by sequence number,
		without their content.
	*/
	ListByBook(context context.Context, bookID string) ([]*Chapter, error)

	/*
		FindByID returns the chapter with its content.

		Returns:
		  - *Chapter: Hydrated chapter
		  - error: NotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		Create persists a new chapter.

		Returns:
		  - error: Conflict when the sequence number is already used in the book
	*/
	Create(context context.Context, chapter *Chapter) error

	// Update applies a partial change set.
	Update(context context.Context, id string, changes Changes) error

	// SoftDelete hides a chapter and frees its sequence number.
	SoftDelete(context context.Context, id string) error
}

// BookLookup resolves a book with the viewer's visibility rules applied.
type BookLookup interface {
	Get(context context.Context, id string, viewer *sec.AuthClaims) (*book.Book, error)
}
