// Copyright (c) 2026 GenrA. All rights reserved.

package comment_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/social/comment"
)

type memComments struct {
	byID  map[string]*comment.Comment
	votes map[string]map[string]int
	order []string
}

func newMemComments() *memComments {
	return &memComments{byID: map[string]*comment.Comment{}, votes: map[string]map[string]int{}}
}

func (repo *memComments) ListByBook(_ context.Context, bookID string) ([]*comment.Comment, error) {
	var out []*comment.Comment
	for index := len(repo.order) - 1; index >= 0; index-- {
		if c, ok := repo.byID[repo.order[index]]; ok && c.BookID == bookID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (repo *memComments) FindByID(_ context.Context, id string) (*comment.Comment, error) {
	if c, ok := repo.byID[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperr.NotFound("Comment")
}

func (repo *memComments) Create(_ context.Context, c *comment.Comment) error {
	copied := *c
	copied.Votes = []comment.Vote{}
	repo.byID[c.ID] = &copied
	repo.order = append(repo.order, c.ID)
	return nil
}

func (repo *memComments) SoftDelete(_ context.Context, id string) error {
	delete(repo.byID, id)
	return nil
}

func (repo *memComments) SetVote(_ context.Context, commentID, userID string, value int) error {
	if repo.votes[commentID] == nil {
		repo.votes[commentID] = map[string]int{}
	}
	if value == 0 {
		delete(repo.votes[commentID], userID)
		return nil
	}
	repo.votes[commentID][userID] = value
	return nil
}

func (repo *memComments) ListVotes(_ context.Context, commentID string) ([]comment.Vote, error) {
	var out []comment.Vote
	for userID, value := range repo.votes[commentID] {
		name := comment.VoteLike
		if value < 0 {
			name = comment.VoteDislike
		}
		out = append(out, comment.Vote{UserID: userID, Vote: name})
	}
	return out, nil
}

type books map[string]bool

func (catalogue books) Get(_ context.Context, id string, _ *sec.AuthClaims) (*book.Book, error) {
	if !catalogue[id] {
		return nil, apperr.NotFound("Book")
	}
	return &book.Book{ID: id}, nil
}

var (
	alice = &sec.AuthClaims{UserID: "alice", Role: string(sec.RoleReader)}
	bob   = &sec.AuthClaims{UserID: "bob", Role: string(sec.RoleReader)}
	admin = &sec.AuthClaims{UserID: "root", Role: string(sec.RoleAdmin)}
)

func newService(repo *memComments) *comment.Service {
	return comment.NewService(repo, books{"b1": true, "b2": true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestPost covers text bounds, replies and cross-book parents.
*/
func TestPost(t *testing.T) {
	repo := newMemComments()
	service := newService(repo)
	ctx := context.Background()

	root, err := service.Post(ctx, alice, "b1", "  Loved chapter three  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Loved chapter three", root.Text)
	assert.Nil(t, root.ParentID)

	reply, err := service.Post(ctx, bob, "b1", "@alice same", &root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *reply.ParentID)

	_, err = service.Post(ctx, bob, "b2", "wrong thread", &root.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	missing := "01900000-0000-7000-8000-000000000000"
	_, err = service.Post(ctx, bob, "b1", "orphan", &missing)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Post(ctx, bob, "b1", "   ", nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Post(ctx, bob, "b1", strings.Repeat("é", comment.MaxTextLength), nil)
	assert.NoError(t, err, "the limit counts characters, not bytes")

	_, err = service.Post(ctx, bob, "b1", strings.Repeat("a", comment.MaxTextLength+1), nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Post(ctx, bob, "hidden", "hello", nil)
	assert.True(t, apperr.IsNotFound(err))

	comments, err := service.List(ctx, nil, "b1")
	require.NoError(t, err)
	assert.Len(t, comments, 3)
	assert.Equal(t, root.ID, comments[len(comments)-1].ID, "newest first")
}

/*
TestDelete allows the author and admins only.
*/
func TestDelete(t *testing.T) {
	repo := newMemComments()
	service := newService(repo)
	ctx := context.Background()

	first, err := service.Post(ctx, alice, "b1", "first", nil)
	require.NoError(t, err)
	second, err := service.Post(ctx, alice, "b1", "second", nil)
	require.NoError(t, err)

	assert.True(t, apperr.HasCode(service.Delete(ctx, bob, first.ID), apperr.CodeForbidden))
	require.NoError(t, service.Delete(ctx, alice, first.ID))
	require.NoError(t, service.Delete(ctx, admin, second.ID))
	assert.True(t, apperr.IsNotFound(service.Delete(ctx, alice, first.ID)))
}

/*
TestVote keeps at most one vote per reader and supports switching and removal.
*/
func TestVote(t *testing.T) {
	repo := newMemComments()
	service := newService(repo)
	ctx := context.Background()

	target, err := service.Post(ctx, alice, "b1", "vote on me", nil)
	require.NoError(t, err)

	votes, err := service.Vote(ctx, bob, target.ID, comment.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, []comment.Vote{{UserID: "bob", Vote: comment.VoteLike}}, votes)

	votes, err = service.Vote(ctx, bob, target.ID, comment.VoteDislike)
	require.NoError(t, err)
	assert.Equal(t, []comment.Vote{{UserID: "bob", Vote: comment.VoteDislike}}, votes)

	votes, err = service.Vote(ctx, bob, target.ID, comment.VoteNone)
	require.NoError(t, err)
	assert.Empty(t, votes)
	assert.NotNil(t, votes)

	_, err = service.Vote(ctx, bob, target.ID, "love")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Vote(ctx, bob, "01900000-0000-7000-8000-000000000000", comment.VoteLike)
	assert.True(t, apperr.IsNotFound(err))
}
