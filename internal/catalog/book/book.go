// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package book provides discovery, the home feed, view counting and the
authoring workflow for books.

# Lifecycle

A book is created as a draft by its author, submitted for review, and then
approved or rejected by an admin. Only approved books appear in listings and
the feed; drafts are visible to their author and to admins.

	draft ──submit──▶ pending_review ──review──▶ approved
	  ▲                                   │
	  └────────── rejected ◀──────────────┘ (resubmit)
*/
package book

import (
	"context"
	"slices"
	"time"
)

// # Domain Entities

// Status is the review state of a book.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// Sort orders accepted by the listing endpoint.
const (
	SortRating = "rating"
	SortViews  = "views"
	SortNewest = "newest"
)

// Book is a catalogue entry. Genres is never nil.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	AuthorID    string     `json:"author_id"`
	AuthorName  string     `json:"author_name"`
	CoverURL    string     `json:"cover_url,omitempty"`
	Description string     `json:"description"`
	Genres      []GenreRef `json:"genres"`
	Status      Status     `json:"status"`
	Price       int        `json:"price"`
	ViewsCount  int64      `json:"views_count"`
	Rating      float64    `json:"rating"`
	RatingCount int        `json:"rating_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GenreRef is the embedded genre summary of a book.
type GenreRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IsVisibleTo reports whether userID may see the book outside of listings.
func (book *Book) IsVisibleTo(userID string, isAdmin bool) bool {
	return book.Status == StatusApproved || isAdmin || (userID != "" && book.AuthorID == userID)
}

// Filter narrows a listing.
type Filter struct {
	Query    string
	Genre    string
	GenreIDs []int
	AuthorID string
	Statuses []Status
	Sort     string
}

// Draft carries the fields of a new book.
type Draft struct {
	Title       string
	Description string
	CoverURL    string
	Price       int
	GenreIDs    []int
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Title       *string
	Description *string
	CoverURL    *string
	Price       *int
	GenreIDs    []int
}

// IsEmpty reports whether nothing would change.
func (changes Changes) IsEmpty() bool {
	return changes.Title == nil && changes.Description == nil && changes.CoverURL == nil &&
		changes.Price == nil && changes.GenreIDs == nil
}

// # Repository Interface

// Repository persists books and their genre links.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)
	FindByID(context context.Context, id string) (*Book, error)
	InterestGenreIDs(context context.Context, userID string) ([]int, error)
	IncrementViews(context context.Context, id string) (int64, error)
	Create(context context.Context, book *Book, genreIDs []int) error
	Update(context context.Context, id string, changes Changes) error
	// TransitionStatus moves the book to "to" only while its status is one of "from".
	// It reports false when the guard did not match.
	TransitionStatus(context context.Context, id string, from []Status, to Status) (bool, error)
}

func uniqueIDs(ids []int) []int {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	return slices.Compact(unique)
}
