// Copyright (c) 2026 GenrA. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/users/auth"
)

// # Fakes

type memUsers struct {
	mu            sync.Mutex
	byID          map[string]*auth.User
	usernameClash int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*auth.User{}}
}

func (repo *memUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *memUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.byID {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repo.find(func(user *auth.User) bool { return strings.EqualFold(user.Email, email) })
}

func (repo *memUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return repo.find(func(user *auth.User) bool { return user.Username == strings.ToLower(username) })
}

func (repo *memUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.usernameClash > 0 {
		repo.usernameClash--
		return auth.ErrUsernameTaken
	}
	for _, existing := range repo.byID {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict("Email is already registered")
		}
	}
	copied := *user
	repo.byID[user.ID] = &copied
	return nil
}

func (repo *memUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.byID[userID].PasswordHash = newHash
	return nil
}

func (repo *memUsers) ban(userID string) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	now := time.Now()
	repo.byID[userID].BannedAt = &now
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*auth.Session{}}
}

func (repo *memSessions) Create(_ context.Context, session *auth.Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	copied := *session
	repo.sessions[session.ID] = &copied
	return nil
}

func (repo *memSessions) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(time.Now()) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (repo *memSessions) Revoke(_ context.Context, sessionID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if session, ok := repo.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (repo *memSessions) RevokeAll(_ context.Context, userID string) error {
	return repo.RevokeOthers(context.Background(), userID, "")
}

func (repo *memSessions) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, session := range repo.sessions {
		if session.UserID == userID && id != currentSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *memSessions) DeleteExpired(context.Context) error { return nil }

func (repo *memSessions) active(userID string) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	count := 0
	for _, session := range repo.sessions {
		if session.UserID == userID && !session.IsRevoked {
			count++
		}
	}
	return count
}

type memIdentities struct {
	mu         sync.Mutex
	identities map[string]*auth.Identity
}

func (repo *memIdentities) Find(_ context.Context, provider, subject string) (*auth.Identity, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if identity, ok := repo.identities[provider+"|"+subject]; ok {
		return identity, nil
	}
	return nil, apperr.NotFound("Identity")
}

func (repo *memIdentities) Create(_ context.Context, identity *auth.Identity) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.identities[identity.Provider+"|"+identity.Subject] = identity
	return nil
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(userID, _, _, sessionID string, _ time.Duration) (string, error) {
	return "access-" + userID + "-" + sessionID, nil
}

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (sender *captureSender) SendPasswordOTP(_ context.Context, email, code string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.codes[email] = code
	return nil
}

type stubProvider struct {
	profile *auth.ExternalProfile
	err     error
}

func (stubProvider) Name() string { return "google" }

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

func (provider stubProvider) Identify(context.Context, string) (*auth.ExternalProfile, error) {
	return provider.profile, provider.err
}

type fixture struct {
	service    *auth.Service
	users      *memUsers
	sessions   *memSessions
	identities *memIdentities
	sender     *captureSender
	redis      *miniredis.Miniredis
}

func newFixture(t *testing.T, provider auth.Provider) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		users:      newMemUsers(),
		sessions:   newMemSessions(),
		identities: &memIdentities{identities: map[string]*auth.Identity{}},
		sender:     &captureSender{codes: map[string]string{}},
		redis:      mr,
	}

	options := auth.Options{
		RedirectAllowed: auth.RedirectMatcher("genra", "genra.app", false),
		OTPSender:       f.sender,
	}
	if provider != nil {
		options.Providers = []auth.Provider{provider}
	}

	f.service = auth.NewService(f.users, f.sessions, f.identities, auth.NewCodeStore(client), stubTokens{}, options)
	return f
}

func (f *fixture) register(t *testing.T, email, password, fullName string) *auth.LoginSession {
	t.Helper()
	session, err := f.service.Register(context.Background(), auth.RegisterInput{Email: email, Password: password, FullName: fullName})
	require.NoError(t, err)
	return session
}

// # Registration

/*
TestGenerateUsername checks the stem and the four digit suffix.
*/
func TestGenerateUsername(t *testing.T) {
	tests := []struct {
		fullName string
		stem     string
	}{
		{"Ana María López", "anamaria"},
		{"Bo", "bo"},
		{"  ", "reader"},
		{"Jean-Luc Picard", "jeanlucp"},
	}

	for _, tt := range tests {
		t.Run(tt.fullName, func(t *testing.T) {
			username, err := auth.GenerateUsername(tt.fullName)
			require.NoError(t, err)
			assert.Regexp(t, regexp.MustCompile(`^`+tt.stem+`[1-9][0-9]{3}$`), username)
		})
	}
}

/*
TestService_Register covers the happy path, weak passwords and duplicate emails.
*/
func TestService_Register(t *testing.T) {
	f := newFixture(t, nil)

	session := f.register(t, "ana@genra.app", "secret123", "Ana Reader")
	assert.Equal(t, sec.RoleReader, session.User.Role)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, 900, session.ExpiresIn)
	assert.True(t, strings.HasPrefix(session.User.Username, "anaread"))
	assert.Equal(t, 1, f.sessions.active(session.User.ID))

	_, err := f.service.Register(context.Background(), auth.RegisterInput{Email: "x@genra.app", Password: "password", FullName: "X"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.Register(context.Background(), auth.RegisterInput{Email: "ANA@genra.app", Password: "secret123", FullName: "Ana Two"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestService_RegisterRetriesUsername ensures username collisions are regenerated
a bounded number of times.
*/
func TestService_RegisterRetriesUsername(t *testing.T) {
	f := newFixture(t, nil)

	f.users.usernameClash = 4
	f.register(t, "retry@genra.app", "secret123", "Retry Me")

	f.users.usernameClash = 5
	_, err := f.service.Register(context.Background(), auth.RegisterInput{Email: "fail@genra.app", Password: "secret123", FullName: "Fail"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

// # Login and Sessions

/*
TestService_Login covers email and username login, bad credentials and suspension.
*/
func TestService_Login(t *testing.T) {
	f := newFixture(t, nil)
	registered := f.register(t, "bo@genra.app", "secret123", "Bo Reads")

	byEmail, err := f.service.Login(context.Background(), auth.LoginInput{Login: "BO@genra.app", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byEmail.User.ID)

	byUsername, err := f.service.Login(context.Background(), auth.LoginInput{Login: registered.User.Username, Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byUsername.User.ID)

	_, err = f.service.Login(context.Background(), auth.LoginInput{Login: "bo@genra.app", Password: "wrong1234"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = f.service.Login(context.Background(), auth.LoginInput{Login: "nobody@genra.app", Password: "secret123"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	f.users.ban(registered.User.ID)
	before := f.sessions.active(registered.User.ID)
	_, err = f.service.Login(context.Background(), auth.LoginInput{Login: "bo@genra.app", Password: "secret123"})
	assert.True(t, apperr.HasCode(err, apperr.CodeSuspended))
	assert.Equal(t, before, f.sessions.active(registered.User.ID), "suspended login must not open a session")
}

/*
TestService_RefreshSession verifies rotation and replay rejection.
*/
func TestService_RefreshSession(t *testing.T) {
	f := newFixture(t, nil)
	first := f.register(t, "cy@genra.app", "secret123", "Cy")

	second, err := f.service.RefreshSession(context.Background(), first.RefreshToken, auth.ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.service.RefreshSession(context.Background(), first.RefreshToken, auth.ClientInfo{})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized), "replayed token must be rejected")

	f.users.ban(first.User.ID)
	_, err = f.service.RefreshSession(context.Background(), second.RefreshToken, auth.ClientInfo{})
	assert.True(t, apperr.HasCode(err, apperr.CodeSuspended))
}

/*
TestService_Logout is idempotent.
*/
func TestService_Logout(t *testing.T) {
	f := newFixture(t, nil)
	session := f.register(t, "di@genra.app", "secret123", "Di")

	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	assert.Equal(t, 0, f.sessions.active(session.User.ID))
}

// # Passwords

/*
TestService_PasswordOTP walks the forgot-password flow end to end.
*/
func TestService_PasswordOTP(t *testing.T) {
	f := newFixture(t, nil)
	session := f.register(t, "ed@genra.app", "secret123", "Ed")
	ctx := context.Background()

	require.NoError(t, f.service.RequestPasswordOTP(ctx, "nobody@genra.app"))
	require.NoError(t, f.service.RequestPasswordOTP(ctx, "ed@genra.app"))

	code := f.sender.codes["ed@genra.app"]
	require.Len(t, code, 6)

	ttl := f.redis.TTL("auth:password_otp:ed@genra.app")
	assert.Equal(t, 10*time.Minute, ttl)

	err := f.service.ResetPassword(ctx, "ed@genra.app", "000000x", "newsecret1")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	err = f.service.ResetPassword(ctx, "ed@genra.app", code, "short")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	require.NoError(t, f.service.ResetPassword(ctx, "ed@genra.app", code, "newsecret1"))
	assert.Equal(t, 0, f.sessions.active(session.User.ID), "reset revokes every session")

	err = f.service.ResetPassword(ctx, "ed@genra.app", code, "newsecret2")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation), "a code works once")

	_, err = f.service.Login(ctx, auth.LoginInput{Login: "ed@genra.app", Password: "newsecret1"})
	assert.NoError(t, err)
}

/*
TestService_ChangePassword keeps the calling session and revokes the others.
*/
func TestService_ChangePassword(t *testing.T) {
	f := newFixture(t, nil)
	first := f.register(t, "fi@genra.app", "secret123", "Fi")
	_, err := f.service.Login(context.Background(), auth.LoginInput{Login: "fi@genra.app", Password: "secret123"})
	require.NoError(t, err)

	currentSessionID := strings.TrimPrefix(first.AccessToken, "access-"+first.User.ID+"-")

	err = f.service.ChangePassword(context.Background(), first.User.ID, currentSessionID, "wrong1234", "another12")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	require.NoError(t, f.service.ChangePassword(context.Background(), first.User.ID, currentSessionID, "secret123", "another12"))
	assert.Equal(t, 1, f.sessions.active(first.User.ID))
}

// # OAuth

/*
TestService_OAuthCodeFlow covers authorize, callback and one-time exchange.
*/
func TestService_OAuthCodeFlow(t *testing.T) {
	provider := stubProvider{profile: &auth.ExternalProfile{Subject: "g-1", Email: "gi@genra.app", EmailVerified: true, Name: "Gi Google"}}
	f := newFixture(t, provider)
	ctx := context.Background()

	consent, err := f.service.BeginOAuth(ctx, "google", "genra://auth/callback", "")
	require.NoError(t, err)
	parsed, err := url.Parse(consent)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	redirect, err := f.service.CompleteOAuth(ctx, "google", "provider-code", state, auth.ClientInfo{})
	require.NoError(t, err)
	back, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "genra", back.Scheme)
	code := back.Query().Get("code")
	require.NotEmpty(t, code)

	_, err = f.service.CompleteOAuth(ctx, "google", "provider-code", state, auth.ClientInfo{})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized), "state is single use")

	session, err := f.service.ExchangeCode(ctx, code, auth.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, "gi@genra.app", session.User.Email)
	assert.True(t, session.User.IsVerified)

	_, err = f.service.ExchangeCode(ctx, code, auth.ClientInfo{})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized), "code is single use")
}

/*
TestService_OAuthImplicitFlow returns tokens in the fragment and links existing accounts by email.
*/
func TestService_OAuthImplicitFlow(t *testing.T) {
	provider := stubProvider{profile: &auth.ExternalProfile{Subject: "g-2", Email: "ho@genra.app", EmailVerified: true, Name: "Ho"}}
	f := newFixture(t, provider)
	existing := f.register(t, "ho@genra.app", "secret123", "Ho Existing")
	ctx := context.Background()

	consent, err := f.service.BeginOAuth(ctx, "google", "https://web.genra.app/callback", auth.FlowImplicit)
	require.NoError(t, err)
	parsed, _ := url.Parse(consent)

	redirect, err := f.service.CompleteOAuth(ctx, "google", "c", parsed.Query().Get("state"), auth.ClientInfo{})
	require.NoError(t, err)

	back, err := url.Parse(redirect)
	require.NoError(t, err)
	fragment, err := url.ParseQuery(back.Fragment)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fragment.Get("access_token"), "access-"+existing.User.ID+"-"))
	assert.NotEmpty(t, fragment.Get("refresh_token"))
	assert.Equal(t, "900", fragment.Get("expires_in"))
}

/*
TestService_OAuthRejections covers untrusted redirects, unknown providers and banned users.
*/
func TestService_OAuthRejections(t *testing.T) {
	provider := stubProvider{profile: &auth.ExternalProfile{Subject: "g-3", Email: "iv@genra.app", EmailVerified: true}}
	f := newFixture(t, provider)
	ctx := context.Background()

	_, err := f.service.BeginOAuth(ctx, "google", "https://evil.example.com/cb", "")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.BeginOAuth(ctx, "github", "genra://cb", "")
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.service.BeginOAuth(ctx, "google", "genra://cb", "token")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	user := f.register(t, "iv@genra.app", "secret123", "Iv")
	f.users.ban(user.User.ID)

	consent, err := f.service.BeginOAuth(ctx, "google", "genra://cb", "")
	require.NoError(t, err)
	parsed, _ := url.Parse(consent)
	redirect, err := f.service.CompleteOAuth(ctx, "google", "c", parsed.Query().Get("state"), auth.ClientInfo{})
	require.NoError(t, err)
	assert.Contains(t, redirect, "error=account_suspended")
}

/*
TestService_OAuthProviderFailure reports provider errors back to the app.
*/
func TestService_OAuthProviderFailure(t *testing.T) {
	f := newFixture(t, stubProvider{err: errors.New("exchange failed")})
	ctx := context.Background()

	consent, err := f.service.BeginOAuth(ctx, "google", "genra://cb?x=1", "")
	require.NoError(t, err)
	parsed, _ := url.Parse(consent)

	redirect, err := f.service.CompleteOAuth(ctx, "google", "c", parsed.Query().Get("state"), auth.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, "genra://cb?x=1&error=access_denied", redirect)
}

/*
TestRedirectMatcher checks trusted redirect targets.
*/
func TestRedirectMatcher(t *testing.T) {
	match := auth.RedirectMatcher("genra", "genra.app", true)

	for target, allowed := range map[string]bool{
		"genra://auth":                   true,
		"https://genra.app/cb":           true,
		"https://web.genra.app/cb":       true,
		"http://web.genra.app/cb":        false,
		"https://evilgenra.app/cb":       false,
		"http://localhost:3000/callback": true,
		"javascript:alert(1)":            false,
		"/relative":                      false,
	} {
		assert.Equal(t, allowed, match(target), target)
	}
}
