// Copyright (c) 2026 GenrA. All rights reserved.

package library_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/library"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
)

const (
	bookID   = "01900000-0000-7000-8000-000000000001"
	chapter1 = "01900000-0000-7000-8000-0000000000c1"
	chapter2 = "01900000-0000-7000-8000-0000000000c2"
	foreign  = "01900000-0000-7000-8000-0000000000f1"
)

type progressKey struct{ user, book string }

type memLibrary struct {
	mu        sync.Mutex
	bookmarks map[progressKey]time.Time
	progress  map[progressKey]library.Progress
	chapters  map[string]string
}

func newMemLibrary() *memLibrary {
	return &memLibrary{
		bookmarks: map[progressKey]time.Time{},
		progress:  map[progressKey]library.Progress{},
		chapters:  map[string]string{chapter1: bookID, chapter2: bookID},
	}
}

func (repo *memLibrary) ListBookmarks(_ context.Context, userID string, _, _ int) ([]library.Bookmark, int, error) {
	var out []library.Bookmark
	for key, at := range repo.bookmarks {
		if key.user == userID {
			out = append(out, library.Bookmark{BookID: key.book, BookmarkedAt: at})
		}
	}
	return out, len(out), nil
}

func (repo *memLibrary) IsBookmarked(_ context.Context, userID, bookID string) (bool, error) {
	_, ok := repo.bookmarks[progressKey{userID, bookID}]
	return ok, nil
}

func (repo *memLibrary) AddBookmark(_ context.Context, userID, bookID string) error {
	key := progressKey{userID, bookID}
	if _, ok := repo.bookmarks[key]; !ok {
		repo.bookmarks[key] = time.Now()
	}
	return nil
}

func (repo *memLibrary) RemoveBookmark(_ context.Context, userID, bookID string) error {
	delete(repo.bookmarks, progressKey{userID, bookID})
	return nil
}

func (repo *memLibrary) ChapterInBook(_ context.Context, chapterID, bookID string) (bool, error) {
	return repo.chapters[chapterID] == bookID, nil
}

func (repo *memLibrary) SaveProgress(_ context.Context, userID, bookID, chapterID string, visitedAt time.Time) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	key := progressKey{userID, bookID}
	if stored, ok := repo.progress[key]; ok && stored.VisitedAt.After(visitedAt) {
		return false, nil
	}
	repo.progress[key] = library.Progress{BookID: bookID, ChapterID: chapterID, VisitedAt: visitedAt}
	return true, nil
}

func (repo *memLibrary) FindProgress(_ context.Context, userID, bookID string) (*library.Progress, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if stored, ok := repo.progress[progressKey{userID, bookID}]; ok {
		return &stored, nil
	}
	return nil, apperr.NotFound("Progress")
}

func (repo *memLibrary) RecentProgress(_ context.Context, userID string, limit int) ([]library.Progress, error) {
	var out []library.Progress
	for key, stored := range repo.progress {
		if key.user == userID && len(out) < limit {
			out = append(out, stored)
		}
	}
	return out, nil
}

type visibleBooks map[string]bool

func (books visibleBooks) Get(_ context.Context, id string, _ *sec.AuthClaims) (*book.Book, error) {
	if !books[id] {
		return nil, apperr.NotFound("Book")
	}
	return &book.Book{ID: id}, nil
}

func newService(repo *memLibrary) *library.Service {
	return library.NewService(repo, visibleBooks{bookID: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestSaveProgress_OrderedByVisitTime ensures a late-arriving older visit never wins.
*/
func TestSaveProgress_OrderedByVisitTime(t *testing.T) {
	repo := newMemLibrary()
	service := newService(repo)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.SetClock(func() time.Time { return base.Add(time.Hour) })

	result, err := service.SaveProgress(ctx, "u1", bookID, chapter2, base.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, result.Applied)

	result, err = service.SaveProgress(ctx, "u1", bookID, chapter1, base)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, chapter2, result.Progress.ChapterID)

	progress, err := service.GetProgress(ctx, "u1", bookID)
	require.NoError(t, err)
	assert.Equal(t, chapter2, progress.ChapterID)
}

/*
TestSaveProgress_Validation rejects chapters from other books and malformed ids.
*/
func TestSaveProgress_Validation(t *testing.T) {
	service := newService(newMemLibrary())
	ctx := context.Background()

	_, err := service.SaveProgress(ctx, "u1", bookID, foreign, time.Now())
	assert.True(t, apperr.IsNotFound(err))

	_, err = service.SaveProgress(ctx, "u1", bookID, "not-a-uuid", time.Now())
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.GetProgress(ctx, "u2", bookID)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestSaveProgress_ClampsFutureVisits keeps a skewed client clock from pinning progress.
*/
func TestSaveProgress_ClampsFutureVisits(t *testing.T) {
	service := newService(newMemLibrary())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service.SetClock(func() time.Time { return now })

	result, err := service.SaveProgress(context.Background(), "u1", bookID, chapter1, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Progress.VisitedAt.Equal(now))

	result, err = service.SaveProgress(context.Background(), "u1", bookID, chapter2, time.Time{})
	require.NoError(t, err)
	assert.True(t, result.Applied)
}

/*
TestBookmarks verifies idempotent add and remove.
*/
func TestBookmarks(t *testing.T) {
	service := newService(newMemLibrary())
	ctx := context.Background()
	viewer := &sec.AuthClaims{UserID: "u1"}

	require.NoError(t, service.AddBookmark(ctx, viewer, bookID))
	require.NoError(t, service.AddBookmark(ctx, viewer, bookID))

	bookmarks, total, err := service.ListBookmarks(ctx, "u1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, bookmarks, 1)

	saved, err := service.IsBookmarked(ctx, "u1", bookID)
	require.NoError(t, err)
	assert.True(t, saved)

	require.NoError(t, service.RemoveBookmark(ctx, "u1", bookID))
	require.NoError(t, service.RemoveBookmark(ctx, "u1", bookID))

	saved, err = service.IsBookmarked(ctx, "u1", bookID)
	require.NoError(t, err)
	assert.False(t, saved)

	assert.True(t, apperr.IsNotFound(service.AddBookmark(ctx, viewer, foreign)))

	empty, _, err := service.ListBookmarks(ctx, "nobody", 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
}
