// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package optimistic applies user actions locally before the server confirms them.

A [Value] holds two states: the one shown to the user and the last one the
server confirmed. [Value.Mutate] shows the new state at once, then runs the
remote call with bounded retries. On success the confirmed state advances; on
failure the shown state returns to the confirmed one, but only when no newer
mutation has been started since. A stale failure never clobbers a newer action.
*/
package optimistic

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/genra-app/genra/internal/client/gateway"
)

// Policy bounds remote retries.
type Policy struct {
	Tries           uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy tries three times starting at 200ms.
var DefaultPolicy = Policy{Tries: 3, InitialInterval: 200 * time.Millisecond, MaxInterval: 2 * time.Second}

// Options configures callbacks. OnChange receives every state shown to the
// user; OnError receives failures that caused a rollback.
type Options[T any] struct {
	Policy   Policy
	OnChange func(T)
	OnError  func(error)
}

// RemoteFunc performs the server call and returns the confirmed state.
type RemoteFunc[T any] func(ctx context.Context) (T, error)

// Value is an optimistically updated piece of state.
type Value[T any] struct {
	mu        sync.Mutex
	shown     T
	confirmed T
	version   uint64

	policy   Policy
	onChange func(T)
	onError  func(error)
}

// NewValue returns a value whose shown and confirmed states are initial.
func NewValue[T any](initial T, options Options[T]) *Value[T] {
	if options.Policy.Tries == 0 {
		options.Policy = DefaultPolicy
	}
	return &Value[T]{
		shown:     initial,
		confirmed: initial,
		policy:    options.Policy,
		onChange:  options.OnChange,
		onError:   options.OnError,
	}
}

// Get returns the state currently shown.
func (value *Value[T]) Get() T {
	value.mu.Lock()
	defer value.mu.Unlock()
	return value.shown
}

// Reset replaces both states, e.g. after a fresh load from the server.
func (value *Value[T]) Reset(state T) {
	value.mu.Lock()
	value.version++
	value.shown = state
	value.confirmed = state
	value.mu.Unlock()
	value.changed(state)
}

/*
Mutate shows next immediately and confirms it remotely.

Returns:
  - T: the state shown once the mutation settled
  - error: the remote failure, after retries; nil on success
*/
func (value *Value[T]) Mutate(ctx context.Context, next T, remote RemoteFunc[T]) (T, error) {
	value.mu.Lock()
	value.version++
	version := value.version
	value.shown = next
	value.mu.Unlock()
	value.changed(next)

	result, err := backoff.Retry(ctx, func() (T, error) {
		state, err := remote(ctx)
		if err != nil && (ctx.Err() != nil || !gateway.Retryable(err)) {
			return state, backoff.Permanent(err)
		}
		return state, err
	}, backoff.WithBackOff(value.policy.backOff()), backoff.WithMaxTries(value.policy.Tries))

	value.mu.Lock()
	latest := version == value.version
	if err == nil {
		value.confirmed = result
		if latest {
			value.shown = result
		}
	} else if latest {
		value.shown = value.confirmed
	}
	shown := value.shown
	value.mu.Unlock()

	if !latest {
		return shown, err
	}
	value.changed(shown)
	if err != nil && value.onError != nil {
		value.onError(err)
	}
	return shown, err
}

func (value *Value[T]) changed(state T) {
	if value.onChange != nil {
		value.onChange(state)
	}
}

func (policy Policy) backOff() backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = policy.InitialInterval
	if policy.MaxInterval > 0 {
		exponential.MaxInterval = policy.MaxInterval
	}
	return exponential
}
