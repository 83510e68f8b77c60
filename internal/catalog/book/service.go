// Copyright (c) 2026 GenrA. All rights reserved.

package book

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/metrics"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
	"github.com/genra-app/genra/pkg/uuid"
)

// # Service Layer

// Service implements catalogue use cases.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a book [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// # Discovery

/*
List returns approved books matching the filter.

Parameters:
  - context: context.Context
  - filter: Filter (query, genre slug, sort); the genre is lower-cased before validation
  - limit: int
  - offset: int

Returns:
  - []*Book: The page
  - int: Total matches
  - error: Validation (unknown sort) or database failures
*/
func (service *Service) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	filter.Genre = strings.ToLower(strings.TrimSpace(filter.Genre))

	validator := &validate.Validator{}
	if filter.Sort != "" {
		validator.OneOf(FieldSort, filter.Sort, SortRating, SortViews, SortNewest)
	}
	if filter.Genre != "" {
		validator.Slug(FieldGenre, filter.Genre)
	}
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	filter.Query = strings.TrimSpace(filter.Query)
	filter.Statuses = []Status{StatusApproved}
	filter.AuthorID = ""
	return service.list(context, filter, limit, offset)
}

/*
Feed builds the home feed for userID.

Description: Readers with interests get approved books sharing at least one
of their genres; everyone else gets the top-rated approved books. Both are
ordered by rating.
*/
func (service *Service) Feed(context context.Context, userID string, limit, offset int) ([]*Book, int, error) {
	filter := Filter{Statuses: []Status{StatusApproved}, Sort: SortRating}

	if userID != "" {
		genreIDs, err := service.repo.InterestGenreIDs(context, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("book_service_feed_interests_failed: %w", err)
		}
		filter.GenreIDs = genreIDs
	}

	return service.list(context, filter, limit, offset)
}

// ListByAuthor returns every book of the author regardless of status.
func (service *Service) ListByAuthor(context context.Context, authorID string, limit, offset int) ([]*Book, int, error) {
	return service.list(context, Filter{AuthorID: authorID, Sort: SortNewest}, limit, offset)
}

func (service *Service) list(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	books, total, err := service.repo.List(context, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if books == nil {
		books = []*Book{}
	}
	return books, total, nil
}

/*
Get returns a single book.

Description: Books that are not approved are reported as missing unless the
viewer is their author or an admin.
*/
func (service *Service) Get(context context.Context, id string, viewer *sec.AuthClaims) (*Book, error) {
	book, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	userID, isAdmin := viewerOf(viewer)
	if !book.IsVisibleTo(userID, isAdmin) {
		return nil, apperr.NotFound("Book")
	}
	return book, nil
}

// RecordView increments the view counter of an approved book by exactly one.
func (service *Service) RecordView(context context.Context, id string) (int64, error) {
	views, err := service.repo.IncrementViews(context, id)
	if err != nil {
		return 0, err
	}
	metrics.BookViewsTotal.Inc()
	return views, nil
}

// # Authoring

/*
Create stores a new draft owned by authorID.

Returns:
  - *Book: The created draft
  - error: Validation or Unprocessable (unknown genre)
*/
func (service *Service) Create(context context.Context, authorID string, draft Draft) (*Book, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.GenreIDs = uniqueIDs(draft.GenreIDs)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, draft.Title).
		MaxLen(FieldTitle, draft.Title, MaxTitleLength).
		MaxLen(FieldDescription, draft.Description, MaxDescriptionLength).
		Range(FieldPrice, draft.Price, 0, MaxPrice).
		Custom(FieldGenres, len(draft.GenreIDs) == 0, "must contain at least one genre").
		Custom(FieldGenres, len(draft.GenreIDs) > MaxGenres, fmt.Sprintf("must contain at most %d genres", MaxGenres))
	if draft.CoverURL != "" {
		validator.URL(FieldCoverURL, draft.CoverURL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	book := &Book{
		ID:          uuid.New(),
		Title:       draft.Title,
		AuthorID:    authorID,
		CoverURL:    draft.CoverURL,
		Description: draft.Description,
		Status:      StatusDraft,
		Price:       draft.Price,
	}
	if err := service.repo.Create(context, book, draft.GenreIDs); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "book_created", slog.String("book_id", book.ID), slog.String("author_id", authorID))
	return service.repo.FindByID(context, book.ID)
}

/*
Update applies changes to a book owned by the caller. Admins may edit any book.
*/
func (service *Service) Update(context context.Context, viewer *sec.AuthClaims, id string, changes Changes) (*Book, error) {
	book, err := service.owned(context, viewer, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if changes.Title != nil {
		trimmed := strings.TrimSpace(*changes.Title)
		changes.Title = &trimmed
		validator.Required(FieldTitle, trimmed).MaxLen(FieldTitle, trimmed, MaxTitleLength)
	}
	if changes.Description != nil {
		validator.MaxLen(FieldDescription, *changes.Description, MaxDescriptionLength)
	}
	if changes.CoverURL != nil && *changes.CoverURL != "" {
		validator.URL(FieldCoverURL, *changes.CoverURL)
	}
	if changes.Price != nil {
		validator.Range(FieldPrice, *changes.Price, 0, MaxPrice)
	}
	if changes.GenreIDs != nil {
		changes.GenreIDs = uniqueIDs(changes.GenreIDs)
		validator.Custom(FieldGenres, len(changes.GenreIDs) == 0, "must contain at least one genre").
			Custom(FieldGenres, len(changes.GenreIDs) > MaxGenres, fmt.Sprintf("must contain at most %d genres", MaxGenres))
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if changes.IsEmpty() {
		return book, nil
	}
	if err := service.repo.Update(context, id, changes); err != nil {
		return nil, err
	}
	return service.repo.FindByID(context, id)
}

// Submit sends a draft or rejected book to review.
func (service *Service) Submit(context context.Context, viewer *sec.AuthClaims, id string) (*Book, error) {
	if _, err := service.owned(context, viewer, id); err != nil {
		return nil, err
	}
	return service.transition(context, id, []Status{StatusDraft, StatusRejected}, StatusPendingReview)
}

// Review approves or rejects a book waiting for review.
func (service *Service) Review(context context.Context, adminID, id string, approve bool) (*Book, error) {
	target := StatusRejected
	if approve {
		target = StatusApproved
	}

	book, err := service.transition(context, id, []Status{StatusPendingReview}, target)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "book_reviewed",
		slog.String("book_id", id),
		slog.String("admin_id", adminID),
		slog.String("status", string(target)),
	)
	return book, nil
}

func (service *Service) transition(context context.Context, id string, from []Status, to Status) (*Book, error) {
	moved, err := service.repo.TransitionStatus(context, id, from, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		if _, err := service.repo.FindByID(context, id); err != nil {
			return nil, err
		}
		return nil, apperr.Conflict(fmt.Sprintf("Book cannot move to %s from its current status", to))
	}
	return service.repo.FindByID(context, id)
}

// owned loads a book the viewer is allowed to modify.
func (service *Service) owned(context context.Context, viewer *sec.AuthClaims, id string) (*Book, error) {
	book, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	userID, isAdmin := viewerOf(viewer)
	if book.AuthorID == userID || isAdmin {
		return book, nil
	}
	if book.Status != StatusApproved {
		return nil, apperr.NotFound("Book")
	}
	return nil, apperr.Forbidden("Only the author can modify this book")
}

func viewerOf(viewer *sec.AuthClaims) (string, bool) {
	if viewer == nil {
		return "", false
	}
	return viewer.UserID, viewer.UserRole().AtLeast(sec.RoleAdmin)
}

// # Constants

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxPrice             = 100000
	MaxGenres            = 5
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCoverURL    = "cover_url"
	FieldPrice       = "price"
	FieldGenres      = "genres"
	FieldSort        = "sort"
	FieldGenre       = "genre"
	FieldApprove     = "approve"
)
