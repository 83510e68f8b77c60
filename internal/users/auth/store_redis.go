// Copyright (c) 2026 GenrA. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/genra-app/genra/internal/platform/apperr"
	redisstore "github.com/genra-app/genra/internal/platform/redis"
)

// RedisCodeStore implements [CodeStore] on top of Redis string keys.
type RedisCodeStore struct {
	client redis.Cmdable
}

// NewCodeStore creates a new Redis-backed CodeStore.
func NewCodeStore(client redis.Cmdable) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

/*
Put stores a value with a TTL.

Parameters:
  - context: context.Context
  - key: string (already prefixed)
  - value: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisCodeStore) Put(context context.Context, key, value string, ttl time.Duration) error {
	if err := store.client.Set(context, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_code_store_put_failed: %w", err)
	}
	return nil
}

/*
Take consumes a value so it can be used at most once.

Returns:
  - string: Stored value
  - error: apperr.NotFound if absent or expired
*/
func (store *RedisCodeStore) Take(context context.Context, key string) (string, error) {
	value, found, err := redisstore.TakeString(context, store.client, key)
	if err != nil {
		return "", fmt.Errorf("redis_code_store_take_failed: %w", err)
	}
	if !found {
		return "", apperr.NotFound("Code")
	}
	return value, nil
}

// Peek reads a value without deleting it.
func (store *RedisCodeStore) Peek(context context.Context, key string) (string, error) {
	value, err := store.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Code")
		}
		return "", fmt.Errorf("redis_code_store_peek_failed: %w", err)
	}
	return value, nil
}

// Delete removes a value.
func (store *RedisCodeStore) Delete(context context.Context, key string) error {
	if err := store.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_code_store_delete_failed: %w", err)
	}
	return nil
}
