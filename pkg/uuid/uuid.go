// Copyright (c) 2026 GenrA. All rights reserved.

// Package uuid issues the time-ordered identifiers used as primary keys.
package uuid

import "github.com/google/uuid"

// New returns a UUIDv7 string. It panics only when the OS entropy source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: generate v7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether value is a canonical, hyphenated UUID.
func Valid(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}
