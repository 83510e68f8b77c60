// Copyright (c) 2026 GenrA. All rights reserved.

package gateway

import (
	"context"
	"net/http"
)

// # Ratings

// Rating returns the caller's stars and the book aggregate.
func (client *Client) Rating(ctx context.Context, bookID string) (*RatingState, error) {
	return client.ratingCall(ctx, call{method: http.MethodGet, path: "/books/" + escape(bookID) + "/rating"})
}

// Rate sets 1..5 stars; 0 clears the rating.
func (client *Client) Rate(ctx context.Context, bookID string, stars int) (*RatingState, error) {
	return client.ratingCall(ctx, call{
		method: http.MethodPut,
		path:   "/books/" + escape(bookID) + "/rating",
		body:   map[string]int{"stars": stars},
	})
}

// ClearRating removes the caller's rating.
func (client *Client) ClearRating(ctx context.Context, bookID string) (*RatingState, error) {
	return client.ratingCall(ctx, call{method: http.MethodDelete, path: "/books/" + escape(bookID) + "/rating"})
}

func (client *Client) ratingCall(ctx context.Context, request call) (*RatingState, error) {
	var state RatingState
	if _, err := client.do(ctx, request, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// # Comments

// Comments fetches every comment of a book as a flat list, newest first.
func (client *Client) Comments(ctx context.Context, bookID string) ([]Comment, error) {
	var comments []Comment
	_, err := client.do(ctx, call{method: http.MethodGet, path: "/books/" + escape(bookID) + "/comments"}, &comments)
	return comments, err
}

// PostComment adds a comment; parentID is nil for a top-level comment.
func (client *Client) PostComment(ctx context.Context, bookID, text string, parentID *string) (*Comment, error) {
	var comment Comment
	_, err := client.do(ctx, call{
		method: http.MethodPost,
		path:   "/books/" + escape(bookID) + "/comments",
		body:   map[string]any{"text": text, "parent_id": parentID},
	}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment the caller wrote.
func (client *Client) DeleteComment(ctx context.Context, commentID string) error {
	_, err := client.do(ctx, call{method: http.MethodDelete, path: "/comments/" + escape(commentID)}, nil)
	return err
}

// Vote sets like, dislike or none and returns the comment's votes.
func (client *Client) Vote(ctx context.Context, commentID, vote string) ([]Vote, error) {
	var votes []Vote
	_, err := client.do(ctx, call{
		method: http.MethodPut,
		path:   "/comments/" + escape(commentID) + "/vote",
		body:   map[string]string{"vote": vote},
	}, &votes)
	return votes, err
}
