// Copyright (c) 2026 GenrA. All rights reserved.

package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/client/gateway"
)

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func newClient(t *testing.T, handler http.Handler) *gateway.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return gateway.New(server.URL, gateway.Options{
		Now: func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
}

/*
TestLoginStoresSession verifies envelope decoding and ExpiresAt derivation.
*/
func TestLoginStoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
		assert.Equal(t, "ana", body["login"])
		assert.Empty(t, request.Header.Get("Authorization"))

		writeJSON(writer, http.StatusOK, map[string]any{"data": map[string]any{
			"access_token": "a1", "refresh_token": "r1", "token_type": "Bearer", "expires_in": 900,
			"user": map[string]any{"id": "u1", "username": "ana"},
		}})
	})

	client := newClient(t, mux)
	session, err := client.Login(context.Background(), "ana", "secret")
	require.NoError(t, err)

	assert.Equal(t, "a1", session.AccessToken)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC), session.ExpiresAt)
	assert.Equal(t, "r1", client.Tokens().Session().RefreshToken)
}

/*
TestErrorEnvelope checks the APIError mapping and helpers.
*/
func TestErrorEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/books/{id}", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusNotFound, map[string]any{"error": "Book not found", "code": "NOT_FOUND"})
	})
	mux.HandleFunc("POST /api/v1/auth/register", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusBadRequest, map[string]any{
			"error": "Validation failed", "code": "VALIDATION_ERROR",
			"details": []map[string]string{{"field": "password", "message": "too short"}},
		})
	})
	mux.HandleFunc("GET /api/v1/genres", func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "upstream down", http.StatusBadGateway)
	})

	client := newClient(t, mux)

	_, err := client.Book(context.Background(), "missing")
	assert.True(t, gateway.IsNotFound(err))
	assert.False(t, gateway.Retryable(err))

	_, err = client.Register(context.Background(), "a@b.co", "x", "Ana")
	apiErr, ok := gateway.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.CodeValidation, apiErr.Code)
	assert.Equal(t, []gateway.FieldError{{Field: "password", Message: "too short"}}, apiErr.Details)

	_, err = client.Genres(context.Background())
	apiErr, ok = gateway.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.True(t, gateway.Retryable(err))
}

/*
TestRetryable classifies transport and API failures.
*/
func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", errors.New("connection reset"), true},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), false},
		{"client_timeout", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), true},
		{"server", &gateway.APIError{Status: 503}, true},
		{"timeout", &gateway.APIError{Status: 408}, true},
		{"rate_limited", &gateway.APIError{Status: 429}, true},
		{"validation", &gateway.APIError{Status: 400}, false},
		{"suspended", &gateway.APIError{Status: 403, Code: gateway.CodeSuspended}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gateway.Retryable(tt.err))
		})
	}
	assert.True(t, gateway.IsSuspended(&gateway.APIError{Status: 403, Code: gateway.CodeSuspended}))
}

/*
TestRetryable_ClientTimeout treats a slow server as a transient failure.
*/
func TestRetryable_ClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-request.Context().Done():
		}
	}))
	t.Cleanup(server.Close)

	client := gateway.New(server.URL, gateway.Options{Timeout: 50 * time.Millisecond})
	_, err := client.Genres(context.Background())

	require.Error(t, err)
	assert.True(t, gateway.Retryable(err))
}

/*
TestRefreshOn401 refreshes once and replays, even for concurrent callers.
*/
func TestRefreshOn401(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/me/progress", func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(writer, http.StatusUnauthorized, map[string]any{"error": "expired", "code": "UNAUTHORIZED"})
			return
		}
		writeJSON(writer, http.StatusOK, map[string]any{"data": []map[string]any{{"book_id": "b1", "chapter_id": "c2"}}})
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(writer http.ResponseWriter, request *http.Request) {
		refreshes.Add(1)
		time.Sleep(20 * time.Millisecond)
		writeJSON(writer, http.StatusOK, map[string]any{"data": map[string]any{
			"access_token": "fresh", "refresh_token": "r2", "expires_in": 900,
		}})
	})

	client := newClient(t, mux)
	client.SetSession(&gateway.Session{AccessToken: "stale", RefreshToken: "r1"})

	errs := make(chan error, 4)
	for range 4 {
		go func() {
			progress, err := client.RecentProgress(context.Background(), 5)
			if err == nil && (len(progress) != 1 || progress[0].ChapterID != "c2") {
				err = fmt.Errorf("unexpected progress %+v", progress)
			}
			errs <- err
		}()
	}
	for range 4 {
		assert.NoError(t, <-errs)
	}

	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, "r2", client.Tokens().Session().RefreshToken)
}

/*
TestRefreshRejected clears the session when the refresh token is no longer valid.
*/
func TestRefreshRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/me", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusUnauthorized, map[string]any{"error": "expired", "code": "UNAUTHORIZED"})
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusUnauthorized, map[string]any{"error": "revoked", "code": "UNAUTHORIZED"})
	})

	client := newClient(t, mux)
	client.SetSession(&gateway.Session{AccessToken: "stale", RefreshToken: "r1"})

	_, err := client.Profile(context.Background())
	assert.True(t, gateway.IsUnauthorized(err))
	assert.Nil(t, client.Tokens().Session())
}

/*
TestBooksPagination decodes list metadata and query parameters.
*/
func TestBooksPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/books", func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, "dragon", query.Get("q"))
		assert.Equal(t, "fantasy", query.Get("genre"))
		assert.Equal(t, "2", query.Get("page"))
		writeJSON(writer, http.StatusOK, map[string]any{
			"data": []map[string]any{{"id": "b1", "title": "Dragon Road"}},
			"meta": map[string]int{"page": 2, "limit": 20, "total": 21, "total_pages": 2},
		})
	})

	page, err := newClient(t, mux).Books(context.Background(), gateway.BookQuery{
		Query: "dragon", Genre: "fantasy", PageRequest: gateway.PageRequest{Page: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Dragon Road", page.Items[0].Title)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

/*
TestAuthorizeURL builds the browser entry point of the OAuth flow.
*/
func TestAuthorizeURL(t *testing.T) {
	client := gateway.New("https://api.genra.app/", gateway.Options{})
	assert.Equal(t,
		"https://api.genra.app/api/v1/auth/oauth/google/authorize?flow=implicit&redirect_to=genra%3A%2F%2Fauth",
		client.AuthorizeURL("google", "genra://auth", gateway.FlowImplicit),
	)
}
