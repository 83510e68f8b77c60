// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package comment stores book discussions.

Comments are returned as a flat list; threading is assembled by clients from
parent_id. Each reader holds at most one vote per comment.
*/
package comment

import (
	"context"
	"time"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/sec"
)

// Vote values as exposed over the API.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
	VoteNone    = "none"
)

// MaxTextLength bounds a comment body in characters.
const MaxTextLength = 2000

// Author is the public identity attached to a comment.
type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Vote is one reader's reaction.
type Vote struct {
	UserID string `json:"user_id"`
	Vote   string `json:"vote"`
}

// Comment is a single post in a book discussion.
type Comment struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	ParentID  *string   `json:"parent_id"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	Votes     []Vote    `json:"votes"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists comments and votes.
type Repository interface {
	ListByBook(context context.Context, bookID string) ([]*Comment, error)
	FindByID(context context.Context, id string) (*Comment, error)
	Create(context context.Context, comment *Comment) error
	SoftDelete(context context.Context, id string) error
	// SetVote stores value (+1 or -1) for the pair, or removes it when value is 0.
	SetVote(context context.Context, commentID, userID string, value int) error
	ListVotes(context context.Context, commentID string) ([]Vote, error)
}

// BookLookup resolves a book with visibility rules applied.
type BookLookup interface {
	Get(context context.Context, id string, viewer *sec.AuthClaims) (*book.Book, error)
}

func voteValue(vote string) int {
	switch vote {
	case VoteLike:
		return 1
	case VoteDislike:
		return -1
	}
	return 0
}

func voteName(value int) string {
	if value > 0 {
		return VoteLike
	}
	return VoteDislike
}
