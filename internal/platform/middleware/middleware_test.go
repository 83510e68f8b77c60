// Copyright (c) 2026 GenrA. All rights reserved.

package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/ctxutil"
	"github.com/genra-app/genra/internal/platform/middleware"
	"github.com/genra-app/genra/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return verifier.claims, nil
}

type stubBans map[string]bool

func (bans stubBans) IsBanned(_ context.Context, userID string) (bool, error) {
	return bans[userID], nil
}

func okHandler(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(ctxutil.UserID(request.Context())))
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

/*
TestAuthenticate covers anonymous, valid, malformed and invalid tokens.
*/
func TestAuthenticate(t *testing.T) {
	handler := middleware.Authenticate(stubVerifier{claims: &sec.AuthClaims{UserID: "u1", Role: "reader"}})(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid", "Bearer good", http.StatusOK, "u1"},
		{"lowercase_scheme", "bearer good", http.StatusOK, "u1"},
		{"malformed", "Token", http.StatusUnauthorized, ""},
		{"invalid", "Bearer bad", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, recorder.Body.String())
			}
		})
	}
}

/*
TestRequireRole checks the role hierarchy gate.
*/
func TestRequireRole(t *testing.T) {
	gate := middleware.RequireRole(sec.RoleAdmin)(http.HandlerFunc(okHandler))

	anonymous := httptest.NewRecorder()
	gate.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	reader := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u", Role: "reader"}))
	gate.ServeHTTP(reader, request)
	assert.Equal(t, http.StatusForbidden, reader.Code)

	admin := httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "a", Role: "admin"}))
	gate.ServeHTTP(admin, request)
	assert.Equal(t, http.StatusOK, admin.Code)
}

/*
TestRequireActive ensures banned accounts are rejected on every authenticated request.
*/
func TestRequireActive(t *testing.T) {
	gate := middleware.RequireActive(stubBans{"banned": true})(http.HandlerFunc(okHandler))

	for userID, status := range map[string]int{"banned": http.StatusForbidden, "fine": http.StatusOK} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: userID}))
		recorder := httptest.NewRecorder()
		gate.ServeHTTP(recorder, request)

		assert.Equal(t, status, recorder.Code, userID)
		if status == http.StatusForbidden {
			assert.Equal(t, "ACCOUNT_SUSPENDED", errorCode(t, recorder))
		}
	}

	anonymous := httptest.NewRecorder()
	gate.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, anonymous.Code)
}

/*
TestRateLimitWith verifies that a client exceeding its burst receives 429.
*/
func TestRateLimitWith(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitWith(ctx, 0.001, 2)(http.HandlerFunc(okHandler))

	statuses := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:5555"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		statuses = append(statuses, recorder.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, other)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

type corsConfig struct{ dev bool }

func (config corsConfig) IsDevelopment() bool  { return config.dev }
func (config corsConfig) OriginSuffix() string { return "genra.app" }

/*
TestCORS checks origin matching in production mode.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsConfig{})(http.HandlerFunc(okHandler))

	for origin, allowed := range map[string]bool{
		"https://genra.app":     true,
		"https://web.genra.app": true,
		"https://evilgenra.app": false,
	} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Origin", origin)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		if allowed {
			assert.Equal(t, origin, recorder.Header().Get("Access-Control-Allow-Origin"))
		} else {
			assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
		}
	}
}

/*
TestRequestID verifies that an id is generated or propagated.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "given-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "given-id", seen)
}
