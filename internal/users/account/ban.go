// Copyright (c) 2026 GenrA. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/genra-app/genra/internal/platform/constants"
)

// BanChecker answers "is this account suspended?" for every authenticated
// request, caching the answer in Redis in front of Postgres.
type BanChecker struct {
	client   redis.Cmdable
	accounts AccountRepository
	ttl      time.Duration
}

// NewBanChecker creates a BanChecker using [constants.BanCacheTTL].
func NewBanChecker(client redis.Cmdable, accounts AccountRepository) *BanChecker {
	return &BanChecker{client: client, accounts: accounts, ttl: constants.BanCacheTTL}
}

func banKey(userID string) string {
	return constants.RedisPrefixBan + userID
}

/*
IsBanned reports the suspension state of userID.

Description: A cache miss or a Redis failure falls through to Postgres; the
database answer is then cached for the TTL.

Returns:
  - bool: True when suspended
  - error: Database failures
*/
func (checker *BanChecker) IsBanned(context context.Context, userID string) (bool, error) {
	cached, err := checker.client.Get(context, banKey(userID)).Result()
	if err == nil {
		return cached == "1", nil
	}

	banned, dbErr := checker.accounts.IsBanned(context, userID)
	if dbErr != nil {
		return false, fmt.Errorf("ban_checker_lookup_failed: %w", dbErr)
	}

	if errors.Is(err, redis.Nil) {
		_ = checker.Remember(context, userID, banned)
	}
	return banned, nil
}

// Remember writes the ban state to the cache so moderation takes effect immediately.
func (checker *BanChecker) Remember(context context.Context, userID string, banned bool) error {
	value := "0"
	if banned {
		value = "1"
	}
	if err := checker.client.Set(context, banKey(userID), value, checker.ttl).Err(); err != nil {
		return fmt.Errorf("ban_checker_cache_failed: %w", err)
	}
	return nil
}
