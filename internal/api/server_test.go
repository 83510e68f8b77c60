// Copyright (c) 2026 GenrA. All rights reserved.

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/api"
	"github.com/genra-app/genra/internal/catalog/genre"
	"github.com/genra-app/genra/internal/platform/config"
	"github.com/genra-app/genra/internal/platform/sec"
)

type staticGenres []genre.Genre

func (genres staticGenres) List(context.Context) ([]genre.Genre, error) {
	return genres, nil
}

type tokenStub map[string]*sec.AuthClaims

func (tokens tokenStub) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := tokens[token]; ok {
		return claims, nil
	}
	return nil, errors.New("unknown token")
}

type banStub map[string]bool

func (bans banStub) IsBanned(_ context.Context, userID string) (bool, error) {
	return bans[userID], nil
}

func newRouter(t *testing.T, databaseErr error) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		"postgres": func(context.Context) error { return databaseErr },
		"redis":    func(context.Context) error { return nil },
	}, logger, "postgres", "redis")

	genreService := genre.NewService(staticGenres{{ID: 1, Name: "Fantasy", Slug: "fantasy"}}, nil, logger)

	return api.NewRouter(ctx, &config.Config{Environment: "development"}, logger,
		api.Dependencies{
			Verifier: tokenStub{
				"reader": {UserID: "u1", Role: string(sec.RoleReader)},
				"banned": {UserID: "u2", Role: string(sec.RoleReader)},
			},
			Bans: banStub{"u2": true},
		},
		api.Handlers{
			Liveness:  liveness,
			Readiness: readiness,
			Genre:     genre.NewHandler(genreService),
		},
	)
}

func serve(handler http.Handler, method, path, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, nil)
	request.RemoteAddr = "192.0.2.1:1234"
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestProbes covers liveness, readiness and the metrics endpoint.
*/
func TestProbes(t *testing.T) {
	healthy := newRouter(t, nil)
	assert.Equal(t, http.StatusOK, serve(healthy, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(healthy, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, serve(healthy, http.MethodGet, "/metrics", "").Code)

	degraded := serve(newRouter(t, errors.New("connection refused")), http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, degraded.Code)

	var body struct {
		Data struct {
			Status string `json:"status"`
			Checks []struct {
				Name string `json:"name"`
				OK   bool   `json:"ok"`
			} `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(degraded.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Data.Status)
	require.Len(t, body.Data.Checks, 2)
	assert.Equal(t, "postgres", body.Data.Checks[0].Name)
	assert.False(t, body.Data.Checks[0].OK)
	assert.True(t, body.Data.Checks[1].OK)
}

/*
TestAPIRoutes checks mounting, anonymous access and the ban gate.
*/
func TestAPIRoutes(t *testing.T) {
	router := newRouter(t, nil)

	genres := serve(router, http.MethodGet, "/api/v1/genres", "")
	require.Equal(t, http.StatusOK, genres.Code)
	assert.Contains(t, genres.Body.String(), `"slug":"fantasy"`)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/genres", "reader").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/v1/genres", "forged").Code)

	banned := serve(router, http.MethodGet, "/api/v1/genres", "banned")
	assert.Equal(t, http.StatusForbidden, banned.Code)
	assert.Contains(t, banned.Body.String(), "ACCOUNT_SUSPENDED")

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/v1/nowhere", "").Code)
}
