// Copyright (c) 2026 GenrA. All rights reserved.

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/users/auth"
)

func post(t *testing.T, router http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_RegisterAndRefresh exercises the JSON transport and the refresh cookie.
*/
func TestHandler_RegisterAndRefresh(t *testing.T) {
	f := newFixture(t, nil)
	router := auth.NewHandler(f.service).Routes()

	bad := post(t, router, "/register", `{"email":"nope","password":"secret123","full_name":"N"}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	created := post(t, router, "/register", `{"email":"jo@genra.app","password":"secret123","full_name":"Jo Reader"}`)
	require.Equal(t, http.StatusCreated, created.Code)

	var envelope struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			ExpiresIn    int    `json:"expires_in"`
			User         struct {
				Username string `json:"username"`
				FullName string `json:"full_name"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &envelope))
	assert.Equal(t, "Jo Reader", envelope.Data.User.FullName)
	assert.NotEmpty(t, envelope.Data.RefreshToken)

	var refreshCookie *http.Cookie
	for _, cookie := range created.Result().Cookies() {
		if cookie.Name == constants.RefreshTokenCookieName {
			refreshCookie = cookie
		}
	}
	require.NotNil(t, refreshCookie)

	byCookie := post(t, router, "/refresh", "", refreshCookie)
	assert.Equal(t, http.StatusOK, byCookie.Code)

	replay := post(t, router, "/refresh", `{"refresh_token":"`+envelope.Data.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

/*
TestHandler_OTPAlwaysAccepted hides whether an address is registered.
*/
func TestHandler_OTPAlwaysAccepted(t *testing.T) {
	f := newFixture(t, nil)
	router := auth.NewHandler(f.service).Routes()

	recorder := post(t, router, "/password/otp", `{"email":"ghost@genra.app"}`)
	assert.Equal(t, http.StatusAccepted, recorder.Code)
}

/*
TestHandler_SessionRequiresAuth rejects anonymous session lookups.
*/
func TestHandler_SessionRequiresAuth(t *testing.T) {
	f := newFixture(t, nil)
	router := auth.NewHandler(f.service).Routes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
