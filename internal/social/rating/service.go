// Copyright (c) 2026 GenrA. All rights reserved.

package rating

import (
	"context"
	"log/slog"

	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
)

const FieldStars = "stars"

// Service implements rating use cases.
type Service struct {
	repo   Repository
	books  BookLookup
	logger *slog.Logger
}

// NewService constructs a rating [Service].
func NewService(repo Repository, books BookLookup, logger *slog.Logger) *Service {
	return &Service{repo: repo, books: books, logger: logger}
}

// Get returns the caller's rating of a book and the current aggregate.
func (service *Service) Get(context context.Context, viewer *sec.AuthClaims, bookID string) (*State, error) {
	parent, err := service.books.Get(context, bookID, viewer)
	if err != nil {
		return nil, err
	}

	stars, err := service.repo.Find(context, viewer.UserID, bookID)
	if err != nil {
		return nil, err
	}
	return &State{BookID: bookID, Stars: stars, Rating: parent.Rating, RatingCount: parent.RatingCount}, nil
}

/*
Rate sets the caller's rating. Zero stars clears it.

Returns:
  - *State: The stored rating and the recomputed aggregate
  - error: Validation (stars outside 0..5) or NotFound (book)
*/
func (service *Service) Rate(context context.Context, viewer *sec.AuthClaims, bookID string, stars int) (*State, error) {
	validator := &validate.Validator{}
	validator.Range(FieldStars, stars, 0, MaxStars)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.books.Get(context, bookID, viewer); err != nil {
		return nil, err
	}

	var (
		aggregate Aggregate
		err       error
	)
	if stars == 0 {
		aggregate, err = service.repo.Delete(context, viewer.UserID, bookID)
	} else {
		aggregate, err = service.repo.Put(context, viewer.UserID, bookID, stars)
	}
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "book_rated",
		slog.String("user_id", viewer.UserID),
		slog.String("book_id", bookID),
		slog.Int("stars", stars),
	)
	return &State{BookID: bookID, Stars: stars, Rating: aggregate.Rating, RatingCount: aggregate.RatingCount}, nil
}

// Clear removes the caller's rating.
func (service *Service) Clear(context context.Context, viewer *sec.AuthClaims, bookID string) (*State, error) {
	return service.Rate(context, viewer, bookID, 0)
}
