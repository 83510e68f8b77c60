// Copyright (c) 2026 GenrA. All rights reserved.

package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// Sort orders accepted by [Client.Books].
const (
	SortRating = "rating"
	SortViews  = "views"
	SortNewest = "newest"
)

// BookQuery filters the public catalogue.
type BookQuery struct {
	Query string
	Genre string
	Sort  string
	PageRequest
}

// Genres lists all genres.
func (client *Client) Genres(ctx context.Context) ([]Genre, error) {
	var genres []Genre
	_, err := client.do(ctx, call{method: http.MethodGet, path: "/genres"}, &genres)
	return genres, err
}

// Books searches approved books.
func (client *Client) Books(ctx context.Context, query BookQuery) (*Page[Book], error) {
	values := url.Values{}
	if query.Query != "" {
		values.Set("q", query.Query)
	}
	if query.Genre != "" {
		values.Set("genre", query.Genre)
	}
	if query.Sort != "" {
		values.Set("sort", query.Sort)
	}
	return listBooks(ctx, client, "/books", pageQuery(query.PageRequest, values))
}

// Feed lists books matching the reader's interests, or top rated ones.
func (client *Client) Feed(ctx context.Context, page PageRequest) (*Page[Book], error) {
	return listBooks(ctx, client, "/books/feed", pageQuery(page, nil))
}

// MyBooks lists the author's own books in every status.
func (client *Client) MyBooks(ctx context.Context, page PageRequest) (*Page[Book], error) {
	return listBooks(ctx, client, "/me/books", pageQuery(page, nil))
}

func listBooks(ctx context.Context, client *Client, path string, query url.Values) (*Page[Book], error) {
	var books []Book
	meta, err := client.do(ctx, call{method: http.MethodGet, path: path, query: query}, &books)
	if err != nil {
		return nil, err
	}
	page := &Page[Book]{Items: books}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

// Book returns one book.
func (client *Client) Book(ctx context.Context, bookID string) (*Book, error) {
	return client.bookCall(ctx, call{method: http.MethodGet, path: "/books/" + escape(bookID)})
}

// RecordView increments the view counter and returns the new total.
func (client *Client) RecordView(ctx context.Context, bookID string) (int64, error) {
	var result struct {
		ViewsCount int64 `json:"views_count"`
	}
	_, err := client.do(ctx, call{method: http.MethodPost, path: "/books/" + escape(bookID) + "/views"}, &result)
	return result.ViewsCount, err
}

// CreateBook stores a new draft.
func (client *Client) CreateBook(ctx context.Context, draft BookDraft) (*Book, error) {
	return client.bookCall(ctx, call{method: http.MethodPost, path: "/books", body: draft})
}

// UpdateBook applies a partial update.
func (client *Client) UpdateBook(ctx context.Context, bookID string, changes BookChanges) (*Book, error) {
	return client.bookCall(ctx, call{method: http.MethodPatch, path: "/books/" + escape(bookID), body: changes})
}

// SubmitBook sends a draft to review.
func (client *Client) SubmitBook(ctx context.Context, bookID string) (*Book, error) {
	return client.bookCall(ctx, call{method: http.MethodPost, path: "/books/" + escape(bookID) + "/submit"})
}

// ReviewBook approves or rejects a pending book. Admin only.
func (client *Client) ReviewBook(ctx context.Context, bookID string, approve bool) (*Book, error) {
	return client.bookCall(ctx, call{
		method: http.MethodPost,
		path:   "/admin/books/" + escape(bookID) + "/review",
		body:   map[string]bool{"approve": approve},
	})
}

func (client *Client) bookCall(ctx context.Context, request call) (*Book, error) {
	var book Book
	if _, err := client.do(ctx, request, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// # Chapters

// Chapters lists a book's chapters without content.
func (client *Client) Chapters(ctx context.Context, bookID string) ([]Chapter, error) {
	var chapters []Chapter
	_, err := client.do(ctx, call{method: http.MethodGet, path: "/books/" + escape(bookID) + "/chapters"}, &chapters)
	return chapters, err
}

// Chapter returns one chapter with its content, unless locked.
func (client *Client) Chapter(ctx context.Context, chapterID string) (*Chapter, error) {
	return client.chapterCall(ctx, call{method: http.MethodGet, path: "/chapters/" + escape(chapterID)})
}

// CreateChapter adds a chapter to an owned book.
func (client *Client) CreateChapter(ctx context.Context, bookID string, draft ChapterDraft) (*Chapter, error) {
	return client.chapterCall(ctx, call{method: http.MethodPost, path: "/books/" + escape(bookID) + "/chapters", body: draft})
}

// UpdateChapter applies a partial update.
func (client *Client) UpdateChapter(ctx context.Context, chapterID string, changes ChapterChanges) (*Chapter, error) {
	return client.chapterCall(ctx, call{method: http.MethodPatch, path: "/chapters/" + escape(chapterID), body: changes})
}

// DeleteChapter removes a chapter.
func (client *Client) DeleteChapter(ctx context.Context, chapterID string) error {
	_, err := client.do(ctx, call{method: http.MethodDelete, path: "/chapters/" + escape(chapterID)}, nil)
	return err
}

func (client *Client) chapterCall(ctx context.Context, request call) (*Chapter, error) {
	var chapter Chapter
	if _, err := client.do(ctx, request, &chapter); err != nil {
		return nil, err
	}
	return &chapter, nil
}
