// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package section loads the independent parts of a composite screen.

Each section keeps its own status and error, so one failing fetch is reported
without hiding the sections that loaded. A [Generation] counter guards every
result: when a view is left or reloaded, results of the earlier load are
discarded instead of being applied to the new state.
*/
package section

import "sync/atomic"

// Generation hands out tokens that stay valid until the next Next or Cancel.
type Generation struct {
	current atomic.Uint64
}

// Token identifies one load.
type Token struct {
	owner *Generation
	value uint64
}

// Next invalidates earlier tokens and returns a fresh one.
func (generation *Generation) Next() Token {
	return Token{owner: generation, value: generation.current.Add(1)}
}

// Cancel invalidates every outstanding token.
func (generation *Generation) Cancel() {
	generation.current.Add(1)
}

// Valid reports whether no newer load or cancel happened since the token was issued.
func (token Token) Valid() bool {
	return token.owner != nil && token.owner.current.Load() == token.value
}
