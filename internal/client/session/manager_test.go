// Copyright (c) 2026 GenrA. All rights reserved.

package session_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/internal/client/localstore"
	"github.com/genra-app/genra/internal/client/session"
	"github.com/genra-app/genra/internal/platform/apperr"
)

// fakeGateway mimics the API for a single account.
type fakeGateway struct {
	tokens    gateway.MemoryTokens
	password  string
	banned    bool
	flagged   bool
	interests int
	refreshes int
	calls     int
	loggedOut bool
}

func (api *fakeGateway) issue(n string) *gateway.Session {
	session := &gateway.Session{AccessToken: "access-" + n, RefreshToken: "refresh-" + n, ExpiresIn: 900}
	api.tokens.SetSession(session)
	return session
}

func (api *fakeGateway) Register(_ context.Context, _, _, _ string) (*gateway.Session, error) {
	api.calls++
	return api.issue("register"), nil
}

func (api *fakeGateway) Login(_ context.Context, _, password string) (*gateway.Session, error) {
	api.calls++
	if password != api.password {
		return nil, &gateway.APIError{Status: http.StatusUnauthorized, Code: gateway.CodeUnauthorized}
	}
	if api.banned {
		return nil, &gateway.APIError{Status: http.StatusForbidden, Code: gateway.CodeSuspended}
	}
	return api.issue("login"), nil
}

func (api *fakeGateway) Refresh(_ context.Context, token string) (*gateway.Session, error) {
	api.refreshes++
	if token != "refresh-login" {
		return nil, &gateway.APIError{Status: http.StatusUnauthorized, Code: gateway.CodeUnauthorized}
	}
	return api.issue("rotated"), nil
}

func (api *fakeGateway) ExchangeCode(_ context.Context, code string) (*gateway.Session, error) {
	if code != "good" {
		return nil, &gateway.APIError{Status: http.StatusUnauthorized, Code: gateway.CodeUnauthorized}
	}
	return api.issue("oauth"), nil
}

func (api *fakeGateway) Logout(context.Context) error {
	api.loggedOut = true
	api.tokens.SetSession(nil)
	return nil
}

func (api *fakeGateway) Profile(context.Context) (*gateway.Profile, error) {
	if api.tokens.Session() == nil {
		return nil, &gateway.APIError{Status: http.StatusUnauthorized, Code: gateway.CodeUnauthorized}
	}
	if api.banned {
		return nil, &gateway.APIError{Status: http.StatusForbidden, Code: gateway.CodeSuspended}
	}
	profile := &gateway.Profile{ID: "u1", Username: "alice", IsBanned: api.flagged, Interests: []gateway.Interest{}}
	for i := range api.interests {
		profile.Interests = append(profile.Interests, gateway.Interest{GenreID: i + 1})
	}
	return profile, nil
}

func (api *fakeGateway) ChangePassword(context.Context, string, string) error {
	api.calls++
	return nil
}

func (api *fakeGateway) RequestPasswordOTP(context.Context, string) error {
	api.calls++
	return nil
}

func (api *fakeGateway) ResetPassword(context.Context, string, string, string) error {
	api.calls++
	return nil
}

func (api *fakeGateway) AuthorizeURL(provider, redirectTo, flow string) string {
	return "https://api.example/" + provider + "?" + redirectTo + "&" + flow
}

func (api *fakeGateway) SetSession(session *gateway.Session) { api.tokens.SetSession(session) }

func (api *fakeGateway) Tokens() gateway.TokenStore { return &api.tokens }

func newStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "genra.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

/*
TestSignUpValidatesLocally verifies that invalid forms never reach the API.
*/
func TestSignUpValidatesLocally(t *testing.T) {
	api := &fakeGateway{}
	manager := session.NewManager(api, nil, nil)

	for _, password := range []string{"short1", "longenough"} {
		_, err := manager.SignUp(context.Background(), "alice@example.com", password, "Alice")
		var appErr *apperr.AppError
		require.True(t, errors.As(err, &appErr), password)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}
	_, err := manager.SignUp(context.Background(), "not-an-email", "longenough1", "Alice")
	require.Error(t, err)
	assert.Zero(t, api.calls)

	profile, err := manager.SignUp(context.Background(), " alice@example.com ", "longenough1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, session.RoutePreferences, manager.Route())
}

/*
TestSignInRemember verifies routing, remembered login and restore after restart.
*/
func TestSignInRemember(t *testing.T) {
	api := &fakeGateway{password: "Secret123", interests: 3}
	store := newStore(t)
	manager := session.NewManager(api, store, nil)

	assert.Equal(t, session.RouteLogin, manager.Route())

	_, err := manager.SignIn(context.Background(), "alice", "wrong", true)
	assert.True(t, gateway.IsUnauthorized(err))

	_, err = manager.SignIn(context.Background(), "alice", "Secret123", true)
	require.NoError(t, err)
	assert.Equal(t, session.RouteHome, manager.Route())

	remembered, err := store.RememberedLogin()
	require.NoError(t, err)
	assert.Equal(t, "alice", remembered.Login)
	assert.Equal(t, "refresh-login", remembered.RefreshToken)

	api.tokens.SetSession(nil)
	restarted := session.NewManager(api, store, nil)
	profile, err := restarted.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, 1, api.refreshes)

	remembered, err = store.RememberedLogin()
	require.NoError(t, err)
	assert.Equal(t, "refresh-rotated", remembered.RefreshToken)

	require.NoError(t, restarted.SignOut(context.Background()))
	assert.Equal(t, session.RouteLogin, restarted.Route())
	remembered, err = store.RememberedLogin()
	require.NoError(t, err)
	assert.Equal(t, "alice", remembered.Login)
	assert.Empty(t, remembered.RefreshToken)

	_, err = restarted.Restore(context.Background())
	assert.ErrorIs(t, err, session.ErrSignedOut)
}

/*
TestBannedAccount verifies that every path to a session rejects a banned account.
*/
func TestBannedAccount(t *testing.T) {
	t.Run("sign in", func(t *testing.T) {
		api := &fakeGateway{password: "Secret123", banned: true}
		_, err := session.NewManager(api, nil, nil).SignIn(context.Background(), "alice", "Secret123", false)
		assert.ErrorIs(t, err, session.ErrAccountSuspended)
	})

	t.Run("navigation check", func(t *testing.T) {
		api := &fakeGateway{password: "Secret123", interests: 4}
		manager := session.NewManager(api, nil, nil)
		_, err := manager.SignIn(context.Background(), "alice", "Secret123", false)
		require.NoError(t, err)
		require.NoError(t, manager.CheckActive(context.Background()))

		api.banned = true
		assert.ErrorIs(t, manager.CheckActive(context.Background()), session.ErrAccountSuspended)
		assert.True(t, api.loggedOut)
		assert.Nil(t, api.tokens.Session())
		assert.Equal(t, session.RouteLogin, manager.Route())
		assert.ErrorIs(t, manager.CheckActive(context.Background()), session.ErrSignedOut)
	})

	t.Run("oauth redirect", func(t *testing.T) {
		manager := session.NewManager(&fakeGateway{}, nil, nil)
		_, err := manager.CompleteOAuth(context.Background(), "genra://auth?error=account_suspended")
		assert.ErrorIs(t, err, session.ErrAccountSuspended)
	})

	for name, callback := range map[string]string{
		"oauth code":     "genra://auth?code=good",
		"oauth implicit": "genra://auth#access_token=a1&refresh_token=r1&expires_in=900&token_type=Bearer",
	} {
		t.Run(name, func(t *testing.T) {
			api := &fakeGateway{flagged: true, interests: 3}
			manager := session.NewManager(api, nil, nil)

			profile, err := manager.CompleteOAuth(context.Background(), callback)
			assert.ErrorIs(t, err, session.ErrAccountSuspended)
			assert.Nil(t, profile)
			assert.True(t, api.loggedOut)
			assert.Nil(t, api.Tokens().Session())
			assert.Nil(t, manager.Profile())
			assert.Equal(t, session.RouteLogin, manager.Route())
		})
	}
}

/*
TestCompleteOAuth verifies both redirect flows.
*/
func TestCompleteOAuth(t *testing.T) {
	api := &fakeGateway{interests: 1}
	manager := session.NewManager(api, nil, nil)

	_, err := manager.CompleteOAuth(context.Background(), "genra://auth?code=good")
	require.NoError(t, err)
	assert.Equal(t, "access-oauth", api.tokens.Session().AccessToken)
	assert.Equal(t, session.RoutePreferences, manager.Route())

	_, err = manager.CompleteOAuth(context.Background(), "genra://auth#access_token=a1&refresh_token=r1&expires_in=900&token_type=Bearer")
	require.NoError(t, err)
	assert.Equal(t, "r1", api.tokens.Session().RefreshToken)

	_, err = manager.CompleteOAuth(context.Background(), "genra://auth?error=access_denied")
	require.ErrorContains(t, err, "access_denied")
}

/*
TestPasswords verifies that password rules are applied before any request.
*/
func TestPasswords(t *testing.T) {
	api := &fakeGateway{}
	manager := session.NewManager(api, nil, nil)
	ctx := context.Background()

	require.Error(t, manager.RequestPasswordOTP(ctx, "nope"))
	require.Error(t, manager.ResetPassword(ctx, "a@b.co", "123456", "short"))
	require.Error(t, manager.ChangePassword(ctx, "old", "nodigits!"))
	assert.Zero(t, api.calls)

	require.NoError(t, manager.RequestPasswordOTP(ctx, "a@b.co"))
	require.NoError(t, manager.ResetPassword(ctx, "a@b.co", "123456", "newpass123"))
	require.NoError(t, manager.ChangePassword(ctx, "old", "newpass123"))
	assert.Equal(t, 3, api.calls)
}
