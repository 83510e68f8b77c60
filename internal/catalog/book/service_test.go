// Copyright (c) 2026 GenrA. All rights reserved.

package book_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
)

// # Fakes

type memBooks struct {
	books     map[string]*book.Book
	genres    map[string][]int
	interests map[string][]int
}

func newMemBooks() *memBooks {
	return &memBooks{books: map[string]*book.Book{}, genres: map[string][]int{}, interests: map[string][]int{}}
}

func (repo *memBooks) add(b book.Book, genreIDs ...int) {
	copied := b
	repo.books[b.ID] = &copied
	repo.genres[b.ID] = genreIDs
}

func (repo *memBooks) List(_ context.Context, filter book.Filter, limit, offset int) ([]*book.Book, int, error) {
	var matched []*book.Book
	for _, b := range repo.books {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, b.Status) {
			continue
		}
		if filter.AuthorID != "" && b.AuthorID != filter.AuthorID {
			continue
		}
		if len(filter.GenreIDs) > 0 && !slices.ContainsFunc(repo.genres[b.ID], func(id int) bool {
			return slices.Contains(filter.GenreIDs, id)
		}) {
			continue
		}
		copied := *b
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Rating > matched[j].Rating })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	return matched[offset:min(total, offset+limit)], total, nil
}

func (repo *memBooks) FindByID(_ context.Context, id string) (*book.Book, error) {
	if b, ok := repo.books[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, apperr.NotFound("Book")
}

func (repo *memBooks) InterestGenreIDs(_ context.Context, userID string) ([]int, error) {
	return repo.interests[userID], nil
}

func (repo *memBooks) IncrementViews(_ context.Context, id string) (int64, error) {
	b, ok := repo.books[id]
	if !ok || b.Status != book.StatusApproved {
		return 0, apperr.NotFound("Book")
	}
	b.ViewsCount++
	return b.ViewsCount, nil
}

func (repo *memBooks) Create(_ context.Context, b *book.Book, genreIDs []int) error {
	for _, id := range genreIDs {
		if id > 13 {
			return apperr.Unprocessable("Genre references a missing record")
		}
	}
	repo.add(*b, genreIDs...)
	return nil
}

func (repo *memBooks) Update(_ context.Context, id string, changes book.Changes) error {
	b := repo.books[id]
	if changes.Title != nil {
		b.Title = *changes.Title
	}
	if changes.Price != nil {
		b.Price = *changes.Price
	}
	if changes.GenreIDs != nil {
		repo.genres[id] = changes.GenreIDs
	}
	return nil
}

func (repo *memBooks) TransitionStatus(_ context.Context, id string, from []book.Status, to book.Status) (bool, error) {
	b, ok := repo.books[id]
	if !ok || !slices.Contains(from, b.Status) {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func newService(repo *memBooks) *book.Service {
	return book.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var (
	reader = &sec.AuthClaims{UserID: "reader-1", Role: string(sec.RoleReader)}
	author = &sec.AuthClaims{UserID: "author-1", Role: string(sec.RoleAuthor)}
	admin  = &sec.AuthClaims{UserID: "admin-1", Role: string(sec.RoleAdmin)}
)

func seeded() *memBooks {
	repo := newMemBooks()
	repo.add(book.Book{ID: "b1", AuthorID: "author-1", Status: book.StatusApproved, Rating: 4.8}, 1, 2)
	repo.add(book.Book{ID: "b2", AuthorID: "author-1", Status: book.StatusApproved, Rating: 3.1}, 5)
	repo.add(book.Book{ID: "b3", AuthorID: "author-2", Status: book.StatusApproved, Rating: 4.2}, 2)
	repo.add(book.Book{ID: "draft", AuthorID: "author-1", Status: book.StatusDraft}, 1)
	return repo
}

func ids(books []*book.Book) []string {
	out := make([]string, len(books))
	for index, b := range books {
		out[index] = b.ID
	}
	return out
}

// # Tests

/*
TestService_List only returns approved books and rejects unknown sorts and malformed genre slugs.
*/
func TestService_List(t *testing.T) {
	service := newService(seeded())

	books, total, err := service.List(context.Background(), book.Filter{AuthorID: "author-1"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NotContains(t, ids(books), "draft")

	_, _, err = service.List(context.Background(), book.Filter{Sort: "random"}, 20, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, _, err = service.List(context.Background(), book.Filter{Genre: "sci fi!"}, 20, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, _, err = service.List(context.Background(), book.Filter{Genre: " Sci-Fi "}, 20, 0)
	assert.NoError(t, err)
}

/*
TestService_Feed filters by interests and falls back to top rated.
*/
func TestService_Feed(t *testing.T) {
	repo := seeded()
	repo.interests["reader-1"] = []int{2}
	service := newService(repo)

	books, _, err := service.Feed(context.Background(), "reader-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b3"}, ids(books))

	books, _, err = service.Feed(context.Background(), "newcomer", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b3", "b2"}, ids(books))
}

/*
TestService_GetVisibility hides drafts from everyone but the author and admins.
*/
func TestService_GetVisibility(t *testing.T) {
	service := newService(seeded())
	ctx := context.Background()

	_, err := service.Get(ctx, "draft", nil)
	assert.True(t, apperr.IsNotFound(err))
	_, err = service.Get(ctx, "draft", reader)
	assert.True(t, apperr.IsNotFound(err))

	_, err = service.Get(ctx, "draft", author)
	assert.NoError(t, err)
	_, err = service.Get(ctx, "draft", admin)
	assert.NoError(t, err)
}

/*
TestService_RecordView increments approved books only.
*/
func TestService_RecordView(t *testing.T) {
	service := newService(seeded())
	ctx := context.Background()

	views, err := service.RecordView(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	views, err = service.RecordView(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)

	_, err = service.RecordView(ctx, "draft")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_AuthoringWorkflow walks a book from draft to approval.
*/
func TestService_AuthoringWorkflow(t *testing.T) {
	repo := newMemBooks()
	service := newService(repo)
	ctx := context.Background()

	_, err := service.Create(ctx, "author-1", book.Draft{Title: "  ", GenreIDs: []int{1}})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Create(ctx, "author-1", book.Draft{Title: "No genres"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Create(ctx, "author-1", book.Draft{Title: "Bad genre", GenreIDs: []int{99}})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnprocessable))

	created, err := service.Create(ctx, "author-1", book.Draft{Title: " The Long Road ", GenreIDs: []int{2, 2, 1}})
	require.NoError(t, err)
	assert.Equal(t, book.StatusDraft, created.Status)
	assert.Equal(t, "The Long Road", created.Title)
	assert.Equal(t, []int{1, 2}, repo.genres[created.ID])

	_, err = service.Review(ctx, admin.UserID, created.ID, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "drafts cannot be approved directly")

	_, err = service.Submit(ctx, reader, created.ID)
	assert.True(t, apperr.IsNotFound(err), "strangers do not see drafts")

	submitted, err := service.Submit(ctx, author, created.ID)
	require.NoError(t, err)
	assert.Equal(t, book.StatusPendingReview, submitted.Status)

	_, err = service.Submit(ctx, author, created.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	rejected, err := service.Review(ctx, admin.UserID, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, book.StatusRejected, rejected.Status)

	_, err = service.Submit(ctx, author, created.ID)
	require.NoError(t, err)
	approved, err := service.Review(ctx, admin.UserID, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, book.StatusApproved, approved.Status)

	_, err = service.Review(ctx, admin.UserID, "missing", true)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_Update enforces ownership.
*/
func TestService_Update(t *testing.T) {
	service := newService(seeded())
	ctx := context.Background()
	title := "Renamed"

	updated, err := service.Update(ctx, author, "b1", book.Changes{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	_, err = service.Update(ctx, reader, "b1", book.Changes{Title: &title})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.Update(ctx, admin, "b3", book.Changes{Title: &title})
	assert.NoError(t, err)

	price := -5
	_, err = service.Update(ctx, author, "b1", book.Changes{Price: &price})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}
