// Copyright (c) 2026 GenrA. All rights reserved.

package library

import (
	"context"
	"log/slog"
	"time"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
)

const (
	FieldChapterID = "chapter_id"
	FieldVisitedAt = "visited_at"

	// MaxClockSkew bounds how far in the future a client visit time may be.
	MaxClockSkew = 5 * time.Minute

	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

// Service implements the library use cases.
type Service struct {
	repo   Repository
	books  BookLookup
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a library [Service].
func NewService(repo Repository, books BookLookup, logger *slog.Logger) *Service {
	return &Service{repo: repo, books: books, logger: logger, now: time.Now}
}

// # Bookmarks

// ListBookmarks returns the caller's shelf, newest first.
func (service *Service) ListBookmarks(context context.Context, userID string, limit, offset int) ([]Bookmark, int, error) {
	bookmarks, total, err := service.repo.ListBookmarks(context, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if bookmarks == nil {
		bookmarks = []Bookmark{}
	}
	return bookmarks, total, nil
}

// IsBookmarked reports whether the caller saved the book.
func (service *Service) IsBookmarked(context context.Context, userID, bookID string) (bool, error) {
	return service.repo.IsBookmarked(context, userID, bookID)
}

// AddBookmark saves a visible book. Saving twice is a no-op.
func (service *Service) AddBookmark(context context.Context, viewer *sec.AuthClaims, bookID string) error {
	if _, err := service.books.Get(context, bookID, viewer); err != nil {
		return err
	}
	return service.repo.AddBookmark(context, viewer.UserID, bookID)
}

// RemoveBookmark deletes a bookmark. Removing a missing bookmark is a no-op.
func (service *Service) RemoveBookmark(context context.Context, userID, bookID string) error {
	return service.repo.RemoveBookmark(context, userID, bookID)
}

// # Reading Progress

/*
SaveProgress records a chapter visit.

Description: The visit time comes from the client so that the order of
visits, not the order of delivery, decides the final position. A zero time
means "now"; times too far in the future are clamped to now.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string
  - chapterID: string
  - visitedAt: time.Time

Returns:
  - *SaveResult: The stored row and whether this visit was applied
  - error: Validation, NotFound (chapter not in book) or storage failures
*/
func (service *Service) SaveProgress(context context.Context, userID, bookID, chapterID string, visitedAt time.Time) (*SaveResult, error) {
	validator := &validate.Validator{}
	validator.UUID(FieldChapterID, chapterID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := service.now()
	if visitedAt.IsZero() || visitedAt.After(now.Add(MaxClockSkew)) {
		visitedAt = now
	}

	belongs, err := service.repo.ChapterInBook(context, chapterID, bookID)
	if err != nil {
		return nil, err
	}
	if !belongs {
		return nil, apperr.NotFound("Chapter")
	}

	applied, err := service.repo.SaveProgress(context, userID, bookID, chapterID, visitedAt.UTC())
	if err != nil {
		return nil, err
	}

	progress, err := service.repo.FindProgress(context, userID, bookID)
	if err != nil {
		return nil, err
	}

	if !applied {
		service.logger.DebugContext(context, "reading_progress_stale",
			slog.String("user_id", userID),
			slog.String("book_id", bookID),
			slog.Time("visited_at", visitedAt),
		)
	}
	return &SaveResult{Progress: progress, Applied: applied}, nil
}

// GetProgress returns the latest position in a book, or NotFound.
func (service *Service) GetProgress(context context.Context, userID, bookID string) (*Progress, error) {
	return service.repo.FindProgress(context, userID, bookID)
}

// RecentProgress lists the most recently read books for "continue reading".
func (service *Service) RecentProgress(context context.Context, userID string, limit int) ([]Progress, error) {
	if limit < 1 || limit > MaxRecentLimit {
		limit = DefaultRecentLimit
	}

	progress, err := service.repo.RecentProgress(context, userID, limit)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = []Progress{}
	}
	return progress, nil
}
