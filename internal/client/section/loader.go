// Copyright (c) 2026 GenrA. All rights reserved.

package section

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status of one section.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (status Status) String() string {
	switch status {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// State is the latest outcome of one section.
type State struct {
	Status Status
	Err    error
	Value  any
}

// FetchFunc loads one section.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	name  string
	fetch FetchFunc
}

// Loader fetches registered sections concurrently.
type Loader struct {
	logger     *slog.Logger
	generation Generation
	sections   []entry

	mu     sync.RWMutex
	states map[string]State
}

// NewLoader returns an empty loader; a nil logger uses slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, states: make(map[string]State)}
}

// Register adds a section. Sections are listed in registration order.
func (loader *Loader) Register(name string, fetch FetchFunc) *Loader {
	loader.sections = append(loader.sections, entry{name: name, fetch: fetch})
	loader.mu.Lock()
	loader.states[name] = State{Status: StatusIdle}
	loader.mu.Unlock()
	return loader
}

/*
Load fetches every section and waits for all of them.

Description: A failing section does not cancel the others. Results are stored
only while this load is the latest one; a load superseded by another Load or
by Cancel returns without touching the states.

Returns:
  - bool: whether this load's results were applied
*/
func (loader *Loader) Load(ctx context.Context) bool {
	loader.mu.Lock()
	token := loader.generation.Next()
	for _, section := range loader.sections {
		previous := loader.states[section.name]
		loader.states[section.name] = State{Status: StatusLoading, Value: previous.Value}
	}
	loader.mu.Unlock()

	var group errgroup.Group
	for _, section := range loader.sections {
		group.Go(func() error {
			value, err := section.fetch(ctx)
			loader.store(token, section.name, value, err)
			return nil
		})
	}
	_ = group.Wait()

	return token.Valid()
}

func (loader *Loader) store(token Token, name string, value any, err error) {
	loader.mu.Lock()
	defer loader.mu.Unlock()

	if !token.Valid() {
		return
	}
	if err != nil {
		loader.logger.Warn("section_load_failed", slog.String("section", name), slog.Any("error", err))
		loader.states[name] = State{Status: StatusFailed, Err: fmt.Errorf("section_%s_failed: %w", name, err)}
		return
	}
	loader.states[name] = State{Status: StatusLoaded, Value: value}
}

// Cancel discards the results of any load in progress.
func (loader *Loader) Cancel() {
	loader.mu.Lock()
	loader.generation.Cancel()
	loader.mu.Unlock()
}

// State returns the state of one section.
func (loader *Loader) State(name string) State {
	loader.mu.RLock()
	defer loader.mu.RUnlock()
	return loader.states[name]
}

// Failed lists failed sections in registration order.
func (loader *Loader) Failed() []string {
	loader.mu.RLock()
	defer loader.mu.RUnlock()

	failed := []string{}
	for _, section := range loader.sections {
		if loader.states[section.name].Status == StatusFailed {
			failed = append(failed, section.name)
		}
	}
	return failed
}

// Value returns the loaded value of a section typed as T.
func Value[T any](loader *Loader, name string) (T, bool) {
	value, ok := loader.State(name).Value.(T)
	return value, ok
}
