// Copyright (c) 2026 GenrA. All rights reserved.

// Package ctxkey defines the typed context keys shared by middleware and handlers.
package ctxkey

// key is unexported so values stored here can only be read through this package.
type key string

const (
	// KeyRequestID holds the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser holds the verified [sec.AuthClaims].
	KeyUser key = "user"

	// KeyLogger holds the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
