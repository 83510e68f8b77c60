// Copyright (c) 2026 GenrA. All rights reserved.

// Package convert parses loosely typed input such as query parameters.
package convert

import (
	"strconv"
	"strings"
)

// Int parses raw as a base-10 integer, returning fallback when raw is blank or malformed.
func Int(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
