// Copyright (c) 2026 GenrA. All rights reserved.

package genre_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/catalog/genre"
)

type countingRepo struct {
	calls int
}

func (repo *countingRepo) List(context.Context) ([]genre.Genre, error) {
	repo.calls++
	return []genre.Genre{
		{ID: 1, Name: "Romance", Slug: "romance", SortOrder: 1},
		{ID: 2, Name: "Fantasy", Slug: "fantasy", SortOrder: 2},
	}, nil
}

/*
TestService_List verifies that the second call is served from Redis.
*/
func TestService_List(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingRepo{}
	service := genre.NewService(repo, client, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := service.List(context.Background())
	require.NoError(t, err)
	second, err := service.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
	assert.True(t, server.Exists("catalog:genres"))
}

/*
TestService_ListWithoutCache falls through to the repository every time.
*/
func TestService_ListWithoutCache(t *testing.T) {
	repo := &countingRepo{}
	service := genre.NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := service.List(context.Background())
	require.NoError(t, err)
	_, err = service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
