// Copyright (c) 2026 GenrA. All rights reserved.

package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// # Bookmarks

// Bookmarks lists saved books, newest first.
func (client *Client) Bookmarks(ctx context.Context, page PageRequest) (*Page[Bookmark], error) {
	var bookmarks []Bookmark
	meta, err := client.do(ctx, call{method: http.MethodGet, path: "/me/library", query: pageQuery(page, nil)}, &bookmarks)
	if err != nil {
		return nil, err
	}
	result := &Page[Bookmark]{Items: bookmarks}
	if meta != nil {
		result.Meta = *meta
	}
	return result, nil
}

// IsBookmarked reports whether bookID is saved.
func (client *Client) IsBookmarked(ctx context.Context, bookID string) (bool, error) {
	return client.bookmarkCall(ctx, http.MethodGet, bookID)
}

// SetBookmark saves or removes bookID. Both directions are idempotent.
func (client *Client) SetBookmark(ctx context.Context, bookID string, bookmarked bool) error {
	method := http.MethodDelete
	if bookmarked {
		method = http.MethodPut
	}
	_, err := client.bookmarkCall(ctx, method, bookID)
	return err
}

func (client *Client) bookmarkCall(ctx context.Context, method, bookID string) (bool, error) {
	var result struct {
		Bookmarked bool `json:"bookmarked"`
	}
	_, err := client.do(ctx, call{method: method, path: "/me/library/" + escape(bookID)}, &result)
	return result.Bookmarked, err
}

// # Reading Progress

// SaveProgress records a chapter visit. The server ignores visits older than the stored one.
func (client *Client) SaveProgress(ctx context.Context, bookID, chapterID string, visitedAt time.Time) (*SaveResult, error) {
	var result SaveResult
	_, err := client.do(ctx, call{
		method: http.MethodPut,
		path:   "/me/progress/" + escape(bookID),
		body: map[string]any{
			"chapter_id": chapterID,
			"visited_at": visitedAt.UTC(),
		},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Progress returns the stored position for bookID. A book never opened yields a not-found error.
func (client *Client) Progress(ctx context.Context, bookID string) (*Progress, error) {
	var progress Progress
	if _, err := client.do(ctx, call{method: http.MethodGet, path: "/me/progress/" + escape(bookID)}, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// RecentProgress lists the most recently read books.
func (client *Client) RecentProgress(ctx context.Context, limit int) ([]Progress, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}

	var progress []Progress
	_, err := client.do(ctx, call{method: http.MethodGet, path: "/me/progress", query: query}, &progress)
	return progress, err
}
