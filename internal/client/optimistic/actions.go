// Copyright (c) 2026 GenrA. All rights reserved.

package optimistic

import (
	"context"
	"sync"

	"github.com/genra-app/genra/internal/client/gateway"
)

// # Bookmark

// BookmarkAPI is the subset of the gateway used by [Bookmark].
type BookmarkAPI interface {
	SetBookmark(ctx context.Context, bookID string, bookmarked bool) error
}

// Bookmark is the saved/unsaved toggle of one book.
type Bookmark struct {
	*Value[bool]
	api    BookmarkAPI
	bookID string
}

// NewBookmark wraps the bookmark state of bookID.
func NewBookmark(api BookmarkAPI, bookID string, bookmarked bool, options Options[bool]) *Bookmark {
	return &Bookmark{Value: NewValue(bookmarked, options), api: api, bookID: bookID}
}

// Toggle flips the shown state.
func (bookmark *Bookmark) Toggle(ctx context.Context) (bool, error) {
	return bookmark.Set(ctx, !bookmark.Get())
}

// Set saves or removes the book.
func (bookmark *Bookmark) Set(ctx context.Context, bookmarked bool) (bool, error) {
	return bookmark.Mutate(ctx, bookmarked, func(ctx context.Context) (bool, error) {
		if err := bookmark.api.SetBookmark(ctx, bookmark.bookID, bookmarked); err != nil {
			return false, err
		}
		return bookmarked, nil
	})
}

// # Rating

// RatingAPI is the subset of the gateway used by [Rating].
type RatingAPI interface {
	Rate(ctx context.Context, bookID string, stars int) (*gateway.RatingState, error)
	ClearRating(ctx context.Context, bookID string) (*gateway.RatingState, error)
}

// Rating is the caller's star rating of one book.
type Rating struct {
	*Value[gateway.RatingState]
	api RatingAPI
}

// NewRating wraps a loaded rating state.
func NewRating(api RatingAPI, initial gateway.RatingState, options Options[gateway.RatingState]) *Rating {
	return &Rating{Value: NewValue(initial, options), api: api}
}

// Rate shows stars immediately; zero clears the rating. The aggregate is
// refreshed from the server reply.
func (rating *Rating) Rate(ctx context.Context, stars int) (gateway.RatingState, error) {
	next := rating.Get()
	next.Stars = stars

	return rating.Mutate(ctx, next, func(ctx context.Context) (gateway.RatingState, error) {
		var (
			state *gateway.RatingState
			err   error
		)
		if stars == 0 {
			state, err = rating.api.ClearRating(ctx, next.BookID)
		} else {
			state, err = rating.api.Rate(ctx, next.BookID, stars)
		}
		if err != nil {
			return gateway.RatingState{}, err
		}
		return *state, nil
	})
}

// # Comment Votes

// VoteAPI is the subset of the gateway used by [Votes].
type VoteAPI interface {
	Vote(ctx context.Context, commentID, vote string) ([]gateway.Vote, error)
}

// Votes tracks the caller's vote on each comment of a thread.
type Votes struct {
	api     VoteAPI
	userID  string
	options Options[string]

	mu     sync.Mutex
	values map[string]*Value[string]
}

// NewVotes tracks votes cast by userID.
func NewVotes(api VoteAPI, userID string, options Options[string]) *Votes {
	return &Votes{api: api, userID: userID, options: options, values: make(map[string]*Value[string])}
}

// Load seeds the caller's vote on commentID from a fetched comment.
func (votes *Votes) Load(comment gateway.Comment) {
	votes.value(comment.ID).Reset(MyVote(comment.Votes, votes.userID))
}

// Get returns the vote shown for commentID.
func (votes *Votes) Get(commentID string) string {
	return votes.value(commentID).Get()
}

// Cast applies vote; casting the vote already shown withdraws it.
func (votes *Votes) Cast(ctx context.Context, commentID, vote string) (string, error) {
	value := votes.value(commentID)
	if value.Get() == vote {
		vote = gateway.VoteNone
	}

	return value.Mutate(ctx, vote, func(ctx context.Context) (string, error) {
		all, err := votes.api.Vote(ctx, commentID, vote)
		if err != nil {
			return "", err
		}
		return MyVote(all, votes.userID), nil
	})
}

func (votes *Votes) value(commentID string) *Value[string] {
	votes.mu.Lock()
	defer votes.mu.Unlock()

	value, ok := votes.values[commentID]
	if !ok {
		value = NewValue(gateway.VoteNone, votes.options)
		votes.values[commentID] = value
	}
	return value
}

// MyVote returns userID's vote in votes, or none.
func MyVote(votes []gateway.Vote, userID string) string {
	for _, vote := range votes {
		if vote.UserID == userID {
			return vote.Vote
		}
	}
	return gateway.VoteNone
}
