// Copyright (c) 2026 GenrA. All rights reserved.

package seed_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/catalog/chapter"
	"github.com/genra-app/genra/internal/catalog/genre"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/seed"
	"github.com/genra-app/genra/internal/users/auth"
)

type memAccounts map[string]*auth.User

func (accounts memAccounts) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if user, ok := accounts[email]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (accounts memAccounts) Create(_ context.Context, user *auth.User) error {
	accounts[user.Email] = user
	return nil
}

type recorder struct {
	books    []*book.Book
	drafts   []book.Draft
	chapters []chapter.Draft
	reviewed []string
}

func (rec *recorder) Create(_ context.Context, authorID string, draft book.Draft) (*book.Book, error) {
	created := &book.Book{ID: draft.Title, AuthorID: authorID, Status: book.StatusDraft, Price: draft.Price}
	rec.books = append(rec.books, created)
	rec.drafts = append(rec.drafts, draft)
	return created, nil
}

func (rec *recorder) Submit(_ context.Context, _ *sec.AuthClaims, id string) (*book.Book, error) {
	return &book.Book{ID: id, Status: book.StatusPendingReview}, nil
}

func (rec *recorder) Review(_ context.Context, _, id string, approve bool) (*book.Book, error) {
	if approve {
		rec.reviewed = append(rec.reviewed, id)
	}
	return &book.Book{ID: id, Status: book.StatusApproved}, nil
}

func (rec *recorder) CreateChapter(_ context.Context, _ *sec.AuthClaims, bookID string, draft chapter.Draft) (*chapter.Chapter, error) {
	rec.chapters = append(rec.chapters, draft)
	return &chapter.Chapter{BookID: bookID, SequenceNumber: draft.SequenceNumber}, nil
}

type genres []genre.Genre

func (list genres) List(context.Context) ([]genre.Genre, error) { return list, nil }

var catalogue = genres{{ID: 1, Slug: "fantasy"}, {ID: 2, Slug: "romance"}, {ID: 3, Slug: "horror"}, {ID: 4, Slug: "mystery"}}

func run(t *testing.T, accounts memAccounts, options seed.Options) (*recorder, seed.Result) {
	t.Helper()
	rec := &recorder{}
	seeder := seed.New(accounts, rec, rec, catalogue, slog.New(slog.NewTextHandler(io.Discard, nil)))
	result, err := seeder.Run(context.Background(), options)
	require.NoError(t, err)
	return rec, result
}

/*
TestRun checks counts, the review workflow and chapter locking.
*/
func TestRun(t *testing.T) {
	accounts := memAccounts{}
	rec, result := run(t, accounts, seed.Options{Authors: 2, Books: 5, ChaptersPerBook: 5, Seed: 42, Password: "Secret123!"})

	assert.Equal(t, seed.Result{Authors: 2, Books: 5, Chapters: 25}, result)
	assert.Len(t, accounts, 2)
	assert.Len(t, rec.reviewed, 5)

	for _, draft := range rec.drafts {
		assert.NotEmpty(t, draft.Title)
		assert.NotEmpty(t, draft.GenreIDs)
		assert.LessOrEqual(t, len(draft.GenreIDs), 3)
	}

	for index, draft := range rec.chapters {
		owner := rec.books[index/5]
		assert.Equal(t, owner.Price > 0 && draft.SequenceNumber > 3, draft.IsLocked)
	}

	for _, user := range accounts {
		assert.Equal(t, sec.RoleAuthor, user.Role)
		assert.Regexp(t, `^[a-z0-9_]{3,30}$`, user.Username)
		assert.True(t, sec.CheckPasswordHash("Secret123!", user.PasswordHash))
	}
}

/*
TestRun_Deterministic verifies that a seed reproduces the same catalogue and reuses authors.
*/
func TestRun_Deterministic(t *testing.T) {
	accounts := memAccounts{}
	options := seed.Options{Authors: 1, Books: 3, ChaptersPerBook: 1, Seed: 7, Password: "Secret123!"}

	first, _ := run(t, accounts, options)
	second, _ := run(t, accounts, options)

	assert.Len(t, accounts, 1)
	require.Len(t, second.drafts, len(first.drafts))
	for index := range first.drafts {
		assert.Equal(t, first.drafts[index].Title, second.drafts[index].Title)
	}
}
