// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package redis provides the client for short-lived GenrA state.

Keys stored here always carry a TTL:

  - auth:password_otp:<email>   emailed reset codes
  - auth:oauth_state:<state>    pending OAuth authorizations
  - auth:oauth_code:<hash>      one-time app codes after OAuth
  - account:ban:<id>            cached ban lookups
  - catalog:genres              cached genre list
*/
package redis

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// Options tunes the client. Attempts bounds the startup retries.
type Options struct {
	PoolSize int
	Attempts uint
}

// NewClient parses redisURL and returns a client that answered a ping.
// Failed pings are retried with exponential backoff.
func NewClient(context stdctx.Context, redisURL string, options Options, logger *slog.Logger) (*redis.Client, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_url_invalid: %w", err)
	}

	if options.PoolSize > 0 {
		parsed.PoolSize = options.PoolSize
		parsed.MaxIdleConns = max(options.PoolSize/2, 1)
	}
	parsed.DialTimeout = 3 * time.Second
	parsed.ReadTimeout = 2 * time.Second
	parsed.WriteTimeout = 2 * time.Second

	client := redis.NewClient(parsed)

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 250 * time.Millisecond
	retry.MaxInterval = 3 * time.Second

	_, err = backoff.Retry(context, func() (struct{}, error) {
		if err := Ping(context, client); err != nil {
			logger.Warn("redis_connect_retry", slog.String("addr", parsed.Addr), slog.Any("error", err))
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(retry), backoff.WithMaxTries(max(options.Attempts, 1)))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis_connect_failed: %w", err)
	}

	logger.Info("redis_client_connected", slog.String("addr", parsed.Addr), slog.Int("pool_size", parsed.PoolSize))
	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client redis.Cmdable) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}

// TakeString atomically reads and deletes key. It returns ok=false when the key is absent.
func TakeString(context stdctx.Context, client redis.Cmdable, key string) (string, bool, error) {
	value, err := client.GetDel(context, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis_getdel_failed: %s: %w", key, err)
	}
	return value, true, nil
}
