// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package session drives sign-in, sign-out and post-auth routing for the client.

Every successful authentication is followed by a profile fetch. A suspended
account is signed out immediately and reported as [ErrAccountSuspended],
whatever the path that produced the session: password, OAuth or a restored
refresh token. [Manager.CheckActive] repeats that check when the reader moves
between top-level screens.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/genra-app/genra/internal/client/gateway"
	"github.com/genra-app/genra/internal/client/localstore"
	"github.com/genra-app/genra/internal/platform/validate"
)

// MinInterests is how many genres a reader follows before reaching home.
const MinInterests = 3

var (
	// ErrAccountSuspended means the account is banned; the local session is gone.
	ErrAccountSuspended = errors.New("session: account suspended")
	// ErrSignedOut means there is no session to work with.
	ErrSignedOut = errors.New("session: signed out")
)

// Route is the screen to show after authentication settles.
type Route string

const (
	RouteLogin       Route = "login"
	RoutePreferences Route = "preferences"
	RouteHome        Route = "home"
)

// Gateway is the subset of the API client used by [Manager].
type Gateway interface {
	Register(ctx context.Context, email, password, fullName string) (*gateway.Session, error)
	Login(ctx context.Context, login, password string) (*gateway.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*gateway.Session, error)
	ExchangeCode(ctx context.Context, code string) (*gateway.Session, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*gateway.Profile, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	RequestPasswordOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
	AuthorizeURL(provider, redirectTo, flow string) string
	SetSession(session *gateway.Session)
	Tokens() gateway.TokenStore
}

// Credentials persists "remember me". A nil Credentials disables it.
type Credentials interface {
	RememberLogin(login, refreshToken string) error
	RememberedLogin() (*localstore.RememberedLogin, error)
	ForgetLogin() error
}

// Manager owns the signed-in state of one device.
type Manager struct {
	api         Gateway
	credentials Credentials
	logger      *slog.Logger

	mu      sync.RWMutex
	profile *gateway.Profile
}

// NewManager creates a manager; credentials and logger may be nil.
func NewManager(api Gateway, credentials Credentials, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: api, credentials: credentials, logger: logger}
}

// # Sign Up / Sign In

// SignUp creates an account. The form is checked locally first and nothing is
// sent when it is invalid.
func (manager *Manager) SignUp(ctx context.Context, email, password, fullName string) (*gateway.Profile, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	validator := &validate.Validator{}
	validator.Required("full_name", fullName).
		Required("email", email).
		Email("email", email).
		Password("password", password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := manager.api.Register(ctx, email, password, fullName); err != nil {
		return nil, err
	}
	return manager.settle(ctx)
}

// SignIn authenticates with a username or email. remember keeps the login and
// refresh token on the device; otherwise any remembered login is forgotten.
func (manager *Manager) SignIn(ctx context.Context, login, password string, remember bool) (*gateway.Profile, error) {
	login = strings.TrimSpace(login)

	validator := &validate.Validator{}
	validator.Required("login", login).Required("password", password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	session, err := manager.api.Login(ctx, login, password)
	if err != nil {
		return nil, suspended(err)
	}

	profile, err := manager.settle(ctx)
	if err != nil {
		return nil, err
	}

	if manager.credentials != nil {
		if remember {
			err = manager.credentials.RememberLogin(login, session.RefreshToken)
		} else {
			err = manager.credentials.ForgetLogin()
		}
		if err != nil {
			manager.logger.WarnContext(ctx, "session_remember_failed", slog.Any("error", err))
		}
	}
	return profile, nil
}

// # OAuth

// AuthorizeURL is the browser URL that starts sign-in with provider.
func (manager *Manager) AuthorizeURL(provider, redirectTo, flow string) string {
	return manager.api.AuthorizeURL(provider, redirectTo, flow)
}

// CompleteOAuth finishes sign-in from the redirect the browser delivered.
func (manager *Manager) CompleteOAuth(ctx context.Context, callbackURL string) (*gateway.Profile, error) {
	callback, err := ParseCallbackURL(callbackURL)
	if err != nil {
		return nil, err
	}

	switch {
	case callback.Error == "account_suspended":
		return nil, ErrAccountSuspended
	case callback.Error != "":
		return nil, fmt.Errorf("session_oauth_failed: %s", callback.Error)
	case callback.Code != "":
		if _, err := manager.api.ExchangeCode(ctx, callback.Code); err != nil {
			return nil, suspended(err)
		}
	default:
		manager.api.SetSession(&gateway.Session{
			AccessToken:  callback.AccessToken,
			RefreshToken: callback.RefreshToken,
			TokenType:    callback.TokenType,
			ExpiresIn:    callback.ExpiresIn,
		})
	}
	return manager.settle(ctx)
}

// # Session State

// CheckActive re-reads the profile and signs out a suspended account.
func (manager *Manager) CheckActive(ctx context.Context) error {
	if manager.api.Tokens().Session() == nil {
		return ErrSignedOut
	}
	_, err := manager.settle(ctx)
	return err
}

// Restore resumes the stored session, or the remembered refresh token when
// there is none.
func (manager *Manager) Restore(ctx context.Context) (*gateway.Profile, error) {
	if manager.api.Tokens().Session() == nil {
		remembered := manager.remembered()
		if remembered == nil || remembered.RefreshToken == "" {
			return nil, ErrSignedOut
		}
		if _, err := manager.api.Refresh(ctx, remembered.RefreshToken); err != nil {
			if gateway.IsSuspended(err) {
				manager.dropRememberedToken(ctx)
				return nil, ErrAccountSuspended
			}
			if gateway.IsUnauthorized(err) {
				manager.dropRememberedToken(ctx)
				return nil, ErrSignedOut
			}
			return nil, err
		}
	}
	return manager.settle(ctx)
}

// SignOut revokes the session. A remembered login keeps its identifier for
// the sign-in form but loses its refresh token.
func (manager *Manager) SignOut(ctx context.Context) error {
	err := manager.api.Logout(ctx)
	manager.dropRememberedToken(ctx)
	manager.setProfile(nil)
	return err
}

// Profile returns the profile fetched by the last successful check.
func (manager *Manager) Profile() *gateway.Profile {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return manager.profile
}

// Route picks the screen after authentication: login without a session,
// preferences until the reader follows enough genres, home otherwise.
func (manager *Manager) Route() Route {
	profile := manager.Profile()
	if profile == nil || manager.api.Tokens().Session() == nil {
		return RouteLogin
	}
	if len(profile.Interests) < MinInterests {
		return RoutePreferences
	}
	return RouteHome
}

// # Passwords

// RequestPasswordOTP emails a reset code.
func (manager *Manager) RequestPasswordOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	validator := &validate.Validator{}
	validator.Required("email", email).Email("email", email)
	if err := validator.Err(); err != nil {
		return err
	}
	return manager.api.RequestPasswordOTP(ctx, email)
}

// ResetPassword sets a new password with an emailed code.
func (manager *Manager) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required("email", email).Required("otp", otp).Password("new_password", newPassword)
	if err := validator.Err(); err != nil {
		return err
	}
	return manager.api.ResetPassword(ctx, strings.TrimSpace(email), strings.TrimSpace(otp), newPassword)
}

// ChangePassword replaces the password of the signed-in account.
func (manager *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required("current_password", currentPassword).Password("new_password", newPassword)
	if err := validator.Err(); err != nil {
		return err
	}
	return manager.api.ChangePassword(ctx, currentPassword, newPassword)
}

// # Internals

// settle fetches the profile for a fresh or resumed session and enforces the ban.
func (manager *Manager) settle(ctx context.Context) (*gateway.Profile, error) {
	profile, err := manager.api.Profile(ctx)
	if err != nil {
		if gateway.IsSuspended(err) {
			return nil, manager.suspend(ctx)
		}
		if gateway.IsUnauthorized(err) {
			manager.api.SetSession(nil)
			manager.setProfile(nil)
			return nil, ErrSignedOut
		}
		return nil, err
	}
	if profile.IsBanned {
		return nil, manager.suspend(ctx)
	}

	manager.setProfile(profile)
	manager.refreshRememberedToken(ctx)
	return profile, nil
}

func (manager *Manager) suspend(ctx context.Context) error {
	manager.logger.InfoContext(ctx, "session_suspended_signout")
	if err := manager.api.Logout(ctx); err != nil {
		manager.logger.DebugContext(ctx, "session_logout_failed", slog.Any("error", err))
	}
	manager.dropRememberedToken(ctx)
	manager.setProfile(nil)
	return ErrAccountSuspended
}

func (manager *Manager) setProfile(profile *gateway.Profile) {
	manager.mu.Lock()
	manager.profile = profile
	manager.mu.Unlock()
}

func (manager *Manager) remembered() *localstore.RememberedLogin {
	if manager.credentials == nil {
		return nil
	}
	remembered, err := manager.credentials.RememberedLogin()
	if err != nil {
		return nil
	}
	return remembered
}

// refreshRememberedToken follows refresh token rotation.
func (manager *Manager) refreshRememberedToken(ctx context.Context) {
	remembered := manager.remembered()
	current := manager.api.Tokens().Session()
	if remembered == nil || remembered.RefreshToken == "" || current == nil || current.RefreshToken == remembered.RefreshToken {
		return
	}
	if err := manager.credentials.RememberLogin(remembered.Login, current.RefreshToken); err != nil {
		manager.logger.WarnContext(ctx, "session_remember_failed", slog.Any("error", err))
	}
}

func (manager *Manager) dropRememberedToken(ctx context.Context) {
	remembered := manager.remembered()
	if remembered == nil || remembered.RefreshToken == "" {
		return
	}
	if err := manager.credentials.RememberLogin(remembered.Login, ""); err != nil {
		manager.logger.WarnContext(ctx, "session_remember_failed", slog.Any("error", err))
	}
}

func suspended(err error) error {
	if gateway.IsSuspended(err) {
		return ErrAccountSuspended
	}
	return err
}
