// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package debounce delays a remote query until typing has been idle.

Every keystroke goes to [Executor.Input]. The raw text is stored at once,
any pending timer is discarded, and a new one is armed. When a timer fires
the query is dispatched with the next sequence number. A response is applied
only if no newer query was dispatched and the input was not cleared in the
meantime, so a slow early response can never overwrite a later one.

Clearing the input (empty or whitespace) cancels the pending timer and
applies an empty result synchronously, without a network call.
*/
package debounce

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultDelay is the idle window before a query is dispatched.
const DefaultDelay = 500 * time.Millisecond

// SearchFunc runs one remote query.
type SearchFunc[T any] func(ctx context.Context, query string) (T, error)

// Result is handed to the apply callback.
type Result[T any] struct {
	Seq     uint64
	Query   string
	Value   T
	Err     error
	Cleared bool
}

// Executor debounces queries. The apply callback runs on a background
// goroutine for dispatched queries and must not call [Executor.Input] synchronously.
type Executor[T any] struct {
	delay  time.Duration
	search SearchFunc[T]
	apply  func(Result[T])

	mu         sync.Mutex
	text       string
	pending    string
	timer      *time.Timer
	generation uint64
	seq        uint64
	closed     bool

	applyMu  sync.Mutex
	inflight sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates an executor; a non-positive delay uses [DefaultDelay].
func New[T any](delay time.Duration, search SearchFunc[T], apply func(Result[T])) *Executor[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor[T]{delay: delay, search: search, apply: apply, ctx: ctx, cancel: cancel}
}

// Input records a keystroke.
func (executor *Executor[T]) Input(query string) {
	executor.mu.Lock()
	if executor.closed {
		executor.mu.Unlock()
		return
	}

	executor.text = query
	executor.stopTimerLocked()

	if strings.TrimSpace(query) == "" {
		executor.pending = ""
		executor.seq++
		seq := executor.seq
		executor.mu.Unlock()

		executor.applyMu.Lock()
		executor.apply(Result[T]{Seq: seq, Cleared: true})
		executor.applyMu.Unlock()
		return
	}

	executor.pending = query
	generation := executor.generation
	executor.timer = time.AfterFunc(executor.delay, func() { executor.fire(generation) })
	executor.mu.Unlock()
}

// Text returns the raw input as last typed.
func (executor *Executor[T]) Text() string {
	executor.mu.Lock()
	defer executor.mu.Unlock()
	return executor.text
}

// Dispatched returns how many queries have been sent or cleared.
func (executor *Executor[T]) Dispatched() uint64 {
	executor.mu.Lock()
	defer executor.mu.Unlock()
	return executor.seq
}

// Flush dispatches the pending query now instead of waiting for the timer.
func (executor *Executor[T]) Flush() {
	executor.mu.Lock()
	if executor.closed || executor.pending == "" {
		executor.mu.Unlock()
		return
	}
	executor.stopTimerLocked()
	executor.dispatchLocked()
}

// Wait blocks until every dispatched query has finished.
func (executor *Executor[T]) Wait() {
	executor.inflight.Wait()
}

// Close stops the timer, cancels in-flight queries and waits for them.
func (executor *Executor[T]) Close() {
	executor.mu.Lock()
	executor.closed = true
	executor.stopTimerLocked()
	executor.mu.Unlock()

	executor.cancel()
	executor.inflight.Wait()
}

func (executor *Executor[T]) stopTimerLocked() {
	if executor.timer != nil {
		executor.timer.Stop()
		executor.timer = nil
	}
	// A timer that already fired sees a newer generation and does nothing.
	executor.generation++
}

func (executor *Executor[T]) fire(generation uint64) {
	executor.mu.Lock()
	if executor.closed || generation != executor.generation || executor.pending == "" {
		executor.mu.Unlock()
		return
	}
	executor.timer = nil
	executor.dispatchLocked()
}

// dispatchLocked is called with mu held and releases it.
func (executor *Executor[T]) dispatchLocked() {
	query := executor.pending
	executor.pending = ""
	executor.seq++
	seq := executor.seq
	executor.inflight.Add(1)
	executor.mu.Unlock()

	go func() {
		defer executor.inflight.Done()
		value, err := executor.search(executor.ctx, query)

		executor.applyMu.Lock()
		defer executor.applyMu.Unlock()

		executor.mu.Lock()
		current := seq == executor.seq && !executor.closed
		executor.mu.Unlock()
		if current {
			executor.apply(Result[T]{Seq: seq, Query: query, Value: value, Err: err})
		}
	}()
}
