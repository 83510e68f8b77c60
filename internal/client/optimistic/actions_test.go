// Copyright (c) 2026 GenrA. All rights reserved.

package optimistic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/internal/client/optimistic"
)

type ratingAPI struct {
	cleared bool
	err     error
	calls   int
}

func (api *ratingAPI) Rate(_ context.Context, bookID string, stars int) (*gateway.RatingState, error) {
	api.calls++
	if api.err != nil {
		return nil, api.err
	}
	return &gateway.RatingState{BookID: bookID, Stars: stars, Rating: 4.5, RatingCount: 2}, nil
}

func (api *ratingAPI) ClearRating(_ context.Context, bookID string) (*gateway.RatingState, error) {
	api.cleared = true
	return &gateway.RatingState{BookID: bookID, Rating: 4, RatingCount: 1}, nil
}

/*
TestRating verifies that stars are shown at once and the aggregate is taken
from the server reply.
*/
func TestRating(t *testing.T) {
	var shown []gateway.RatingState
	api := &ratingAPI{}
	rating := optimistic.NewRating(api, gateway.RatingState{BookID: "book-1", Rating: 4, RatingCount: 1},
		optimistic.Options[gateway.RatingState]{Policy: fast, OnChange: func(state gateway.RatingState) { shown = append(shown, state) }})

	state, err := rating.Rate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, state.Stars)
	assert.InDelta(t, 4.5, state.Rating, 0.001)

	require.Len(t, shown, 2)
	assert.Equal(t, 5, shown[0].Stars)
	assert.InDelta(t, 4.0, shown[0].Rating, 0.001)

	state, err = rating.Rate(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, api.cleared)
	assert.Zero(t, state.Stars)
}

/*
TestRating_Offline verifies that a failed rating is rolled back to the
previous stars once the retries are spent.
*/
func TestRating_Offline(t *testing.T) {
	var shown []int
	offline := errors.New("dial tcp: connection refused")
	api := &ratingAPI{err: offline}
	rating := optimistic.NewRating(api, gateway.RatingState{BookID: "book-1", Rating: 4, RatingCount: 1},
		optimistic.Options[gateway.RatingState]{Policy: fast, OnChange: func(state gateway.RatingState) { shown = append(shown, state.Stars) }})

	state, err := rating.Rate(context.Background(), 5)
	require.ErrorIs(t, err, offline)
	assert.Zero(t, state.Stars)
	assert.Zero(t, rating.Get().Stars)
	assert.Equal(t, []int{5, 0}, shown)
	assert.Equal(t, int(fast.Tries), api.calls)
}

type voteAPI struct{ votes map[string]string }

func (api *voteAPI) Vote(_ context.Context, _ string, vote string) ([]gateway.Vote, error) {
	if vote == gateway.VoteNone {
		delete(api.votes, "me")
	} else {
		api.votes["me"] = vote
	}
	out := []gateway.Vote{}
	for user, v := range api.votes {
		out = append(out, gateway.Vote{UserID: user, Vote: v})
	}
	return out, nil
}

/*
TestVotes verifies that casting the same vote twice withdraws it.
*/
func TestVotes(t *testing.T) {
	api := &voteAPI{votes: map[string]string{"other": gateway.VoteDislike}}
	votes := optimistic.NewVotes(api, "me", optimistic.Options[string]{Policy: fast})

	votes.Load(gateway.Comment{ID: "c1", Votes: []gateway.Vote{{UserID: "other", Vote: gateway.VoteDislike}}})
	assert.Equal(t, gateway.VoteNone, votes.Get("c1"))

	state, err := votes.Cast(context.Background(), "c1", gateway.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, gateway.VoteLike, state)

	state, err = votes.Cast(context.Background(), "c1", gateway.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, gateway.VoteNone, state)

	state, err = votes.Cast(context.Background(), "c1", gateway.VoteDislike)
	require.NoError(t, err)
	assert.Equal(t, gateway.VoteDislike, state)
	assert.Equal(t, gateway.VoteNone, votes.Get("c2"))
}
