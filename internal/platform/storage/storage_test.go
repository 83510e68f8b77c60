// Copyright (c) 2026 GenrA. All rights reserved.

package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/platform/apperr"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buffer.Bytes()
}

func TestDiskStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "https://api.genra.app/")
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }

	url, err := store.Put(context.Background(), "user-1", pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "https://api.genra.app/avatars/user-1_1700000000123.png", url)

	_, err = os.Stat(filepath.Join(dir, "user-1_1700000000123.png"))
	assert.NoError(t, err)
}

func TestDiskStore_PutRejects(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "user-1", nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = store.Put(context.Background(), "user-1", []byte("just some text, not an image"))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = store.Put(context.Background(), "user-1", make([]byte, 5<<20+1))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestDiskStore_Handler(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:8080")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t), 0o644))

	recorder := httptest.NewRecorder()
	store.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/avatars/a.png", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	listing := httptest.NewRecorder()
	store.Handler().ServeHTTP(listing, httptest.NewRequest(http.MethodGet, "/avatars/", nil))
	assert.Equal(t, http.StatusNotFound, listing.Code)
}
