// Copyright (c) 2026 GenrA. All rights reserved.

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/platform/ctxutil"
	"github.com/genra-app/genra/internal/platform/sec"
)

/*
TestContext_Anonymous verifies the zero values of an untouched context.
*/
func TestContext_Anonymous(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, ctxutil.GetRequestID(ctx))
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))
	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	assert.Empty(t, ctxutil.UserID(ctx))
}

/*
TestContext_RequestScope verifies that a request carries its id, logger and reader.
*/
func TestContext_RequestScope(t *testing.T) {
	requestLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reader := &sec.AuthClaims{UserID: "reader-7", Role: "reader"}

	ctx := ctxutil.WithRequestID(context.Background(), "req-42")
	ctx = ctxutil.WithLogger(ctx, requestLogger)
	ctx = ctxutil.WithAuthUser(ctx, reader)

	assert.Equal(t, "req-42", ctxutil.GetRequestID(ctx))
	assert.Same(t, requestLogger, ctxutil.GetLogger(ctx))

	claims := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "reader", claims.Role)
	assert.Equal(t, "reader-7", ctxutil.UserID(ctx))
}
