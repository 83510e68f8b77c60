// Copyright (c) 2026 GenrA. All rights reserved.

package rating_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/social/rating"
)

type memRatings struct {
	stars map[string]map[string]int
}

func (repo *memRatings) aggregate(bookID string) rating.Aggregate {
	sum, count := 0, 0
	for _, stars := range repo.stars[bookID] {
		sum += stars
		count++
	}
	if count == 0 {
		return rating.Aggregate{}
	}
	return rating.Aggregate{Rating: math.Round(float64(sum)/float64(count)*100) / 100, RatingCount: count}
}

func (repo *memRatings) Find(_ context.Context, userID, bookID string) (int, error) {
	return repo.stars[bookID][userID], nil
}

func (repo *memRatings) Put(_ context.Context, userID, bookID string, stars int) (rating.Aggregate, error) {
	if repo.stars[bookID] == nil {
		repo.stars[bookID] = map[string]int{}
	}
	repo.stars[bookID][userID] = stars
	return repo.aggregate(bookID), nil
}

func (repo *memRatings) Delete(_ context.Context, userID, bookID string) (rating.Aggregate, error) {
	delete(repo.stars[bookID], userID)
	return repo.aggregate(bookID), nil
}

type books map[string]*book.Book

func (catalogue books) Get(_ context.Context, id string, _ *sec.AuthClaims) (*book.Book, error) {
	if b, ok := catalogue[id]; ok {
		return b, nil
	}
	return nil, apperr.NotFound("Book")
}

/*
TestRate covers upsert, aggregate recomputation and clearing.
*/
func TestRate(t *testing.T) {
	repo := &memRatings{stars: map[string]map[string]int{}}
	service := rating.NewService(repo, books{"b1": {ID: "b1"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	alice := &sec.AuthClaims{UserID: "alice"}
	bob := &sec.AuthClaims{UserID: "bob"}

	state, err := service.Rate(ctx, alice, "b1", 5)
	require.NoError(t, err)
	assert.Equal(t, rating.State{BookID: "b1", Stars: 5, Rating: 5, RatingCount: 1}, *state)

	state, err = service.Rate(ctx, bob, "b1", 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, state.Rating, 0.001)
	assert.Equal(t, 2, state.RatingCount)

	state, err = service.Rate(ctx, bob, "b1", 4)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, state.Rating, 0.001)
	assert.Equal(t, 2, state.RatingCount, "re-rating replaces the previous vote")

	state, err = service.Clear(ctx, alice, "b1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Stars)
	assert.Equal(t, 1, state.RatingCount)

	_, err = service.Rate(ctx, alice, "b1", 6)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Rate(ctx, alice, "missing", 3)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestGet reports zero stars for unrated books.
*/
func TestGet(t *testing.T) {
	repo := &memRatings{stars: map[string]map[string]int{}}
	service := rating.NewService(repo, books{"b1": {ID: "b1", Rating: 4.2, RatingCount: 10}}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	state, err := service.Get(context.Background(), &sec.AuthClaims{UserID: "carol"}, "b1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Stars)
	assert.Equal(t, 10, state.RatingCount)
}
