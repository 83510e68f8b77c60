// Copyright (c) 2026 GenrA. All rights reserved.

package genre

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/genra-app/genra/internal/platform/constants"
)

// Service returns genres through a Redis read-through cache.
type Service struct {
	repo   Repository
	cache  redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewService constructs a genre [Service]. A nil cache disables caching.
func NewService(repo Repository, cache redis.Cmdable, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: constants.GenreCacheTTL, logger: logger}
}

/*
List returns the ordered genre list.

Description: Cache failures are logged and never fail the request.

Returns:
  - []Genre: Genres ordered by sort order
  - error: Database failures
*/
func (service *Service) List(context context.Context) ([]Genre, error) {
	if service.cache != nil {
		raw, err := service.cache.Get(context, constants.RedisKeyGenres).Bytes()
		switch {
		case err == nil:
			var genres []Genre
			if json.Unmarshal(raw, &genres) == nil {
				return genres, nil
			}
		case !errors.Is(err, redis.Nil):
			service.logger.WarnContext(context, "genre_cache_read_failed", slog.Any("error", err))
		}
	}

	genres, err := service.repo.List(context)
	if err != nil {
		return nil, err
	}
	if genres == nil {
		genres = []Genre{}
	}

	if service.cache != nil {
		if raw, err := json.Marshal(genres); err == nil {
			if err := service.cache.Set(context, constants.RedisKeyGenres, raw, service.ttl).Err(); err != nil {
				service.logger.WarnContext(context, "genre_cache_write_failed", slog.Any("error", err))
			}
		}
	}
	return genres, nil
}
