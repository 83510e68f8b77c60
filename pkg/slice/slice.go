// Copyright (c) 2026 GenrA. All rights reserved.

// Package slice holds the generic helpers [slices] does not provide.
package slice

// Map applies transform to every element. A nil input yields nil.
func Map[T, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}
	result := make([]U, len(input))
	for i, value := range input {
		result[i] = transform(value)
	}
	return result
}

// Filter keeps the elements for which keep returns true, in order. The
// result never aliases input.
func Filter[T any](input []T, keep func(T) bool) []T {
	result := make([]T, 0, len(input))
	for _, value := range input {
		if keep(value) {
			result = append(result, value)
		}
	}
	return result
}
