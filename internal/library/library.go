// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package library keeps each reader's bookmarks and reading progress.

Progress holds one row per (reader, book). Writes are ordered by the client
supplied visit time: a visit older than the stored one is ignored, so
out-of-order deliveries from a fast reader never move the position back.
*/
package library

import (
	"context"
	"time"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/sec"
)

// Bookmark is a saved book as shown on the library shelf.
type Bookmark struct {
	BookID       string    `json:"book_id"`
	Title        string    `json:"title"`
	AuthorName   string    `json:"author_name"`
	CoverURL     string    `json:"cover_url,omitempty"`
	Rating       float64   `json:"rating"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

// Progress is the latest reading position within a book.
type Progress struct {
	BookID         string    `json:"book_id"`
	BookTitle      string    `json:"book_title"`
	CoverURL       string    `json:"cover_url,omitempty"`
	ChapterID      string    `json:"chapter_id"`
	ChapterTitle   string    `json:"chapter_title"`
	SequenceNumber int       `json:"sequence_number"`
	VisitedAt      time.Time `json:"visited_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SaveResult reports the stored progress and whether this visit replaced it.
type SaveResult struct {
	Progress *Progress `json:"progress"`
	Applied  bool      `json:"applied"`
}

// Repository persists bookmarks and reading progress.
type Repository interface {
	ListBookmarks(context context.Context, userID string, limit, offset int) ([]Bookmark, int, error)
	IsBookmarked(context context.Context, userID, bookID string) (bool, error)
	AddBookmark(context context.Context, userID, bookID string) error
	RemoveBookmark(context context.Context, userID, bookID string) error

	ChapterInBook(context context.Context, chapterID, bookID string) (bool, error)
	// SaveProgress upserts the row unless the stored visit is newer. It reports
	// whether the row was written.
	SaveProgress(context context.Context, userID, bookID, chapterID string, visitedAt time.Time) (bool, error)
	FindProgress(context context.Context, userID, bookID string) (*Progress, error)
	RecentProgress(context context.Context, userID string, limit int) ([]Progress, error)
}

// BookLookup resolves a book with visibility rules applied.
type BookLookup interface {
	Get(context context.Context, id string, viewer *sec.AuthClaims) (*book.Book, error)
}
