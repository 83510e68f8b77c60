// Copyright (c) 2026 GenrA. All rights reserved.

// Package pointer builds the optional fields of partial updates.
package pointer

// To returns a pointer to a copy of value.
func To[T any](value T) *T {
	return &value
}
