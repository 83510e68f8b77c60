// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package storage keeps uploaded avatar images.

Files are named "<userID>_<unixMillis>.<ext>" and served back under
/avatars/<name>. The content type is sniffed from the bytes, never taken
from the client.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/constants"
)

// PublicPrefix is the URL path under which stored avatars are served.
const PublicPrefix = "/avatars/"

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Put(ctx context.Context, userID string, data []byte) (string, error)
}

// DiskStore writes avatars to a local directory.
type DiskStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// NewDiskStore creates the directory if needed.
func NewDiskStore(dir, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/"), now: time.Now}, nil
}

// Put validates and stores an avatar for userID.
func (store *DiskStore) Put(ctx context.Context, userID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.ValidationError("Avatar file is empty")
	}
	if len(data) > constants.MaxAvatarBytes {
		return "", apperr.ValidationError("Avatar must be 5 MB or smaller")
	}

	extension, ok := allowedTypes[mimetype.Detect(data).String()]
	if !ok {
		return "", apperr.ValidationError("Avatar must be a JPEG, PNG or WebP image")
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := FileName(userID, store.now(), extension)
	if err := os.WriteFile(filepath.Join(store.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage_put_failed: %w", err)
	}

	return store.baseURL + PublicPrefix + name, nil
}

// Handler serves stored avatars. Directory listings are disabled.
func (store *DiskStore) Handler() http.Handler {
	files := http.StripPrefix(PublicPrefix, http.FileServer(http.Dir(store.dir)))
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if strings.HasSuffix(request.URL.Path, "/") {
			http.NotFound(writer, request)
			return
		}
		files.ServeHTTP(writer, request)
	})
}

// FileName builds the "<userID>_<unixMillis>.<ext>" avatar name.
func FileName(userID string, at time.Time, extension string) string {
	return fmt.Sprintf("%s_%d.%s", userID, at.UnixMilli(), extension)
}

// ReadLimited reads at most MaxAvatarBytes+1 bytes so oversize uploads are detected.
func ReadLimited(reader io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(reader, constants.MaxAvatarBytes+1))
}
