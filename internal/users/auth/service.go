// Copyright (c) 2026 GenrA. All rights reserved.

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/metrics"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
	"github.com/genra-app/genra/pkg/slug"
	"github.com/genra-app/genra/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role, sessionID string, timeToLive time.Duration) (string, error)
}

// OTPSender delivers password reset codes to the account owner.
type OTPSender interface {
	SendPasswordOTP(context context.Context, email, code string) error
}

// LogOTPSender writes codes to the log instead of sending mail.
type LogOTPSender struct {
	Logger *slog.Logger
}

// SendPasswordOTP logs the code delivery.
func (sender LogOTPSender) SendPasswordOTP(context context.Context, email, code string) error {
	sender.Logger.InfoContext(context, "password_otp_issued", slog.String("email", email), slog.String("otp", code))
	return nil
}

const (
	refreshTokenLength  = 32
	maxUsernameAttempts = 5
	usernameStemLength  = 8
)

// Options configures optional collaborators of [Service].
type Options struct {
	Providers []Provider

	// RedirectAllowed reports whether an OAuth redirect_to target is trusted.
	RedirectAllowed func(rawURL string) bool

	OTPSender OTPSender
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service implements user authentication use cases.
type Service struct {
	userRepository     UserRepository
	sessionRepository  SessionRepository
	identityRepository IdentityRepository
	codeStore          CodeStore
	tokenProvider      TokenProvider

	providers       map[string]Provider
	redirectAllowed func(string) bool
	otpSender       OTPSender
	logger          *slog.Logger
	now             func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	identityRepo IdentityRepository,
	codes CodeStore,
	tokenProv TokenProvider,
	options Options,
) *Service {
	service := &Service{
		userRepository:     userRepo,
		sessionRepository:  sessionRepo,
		identityRepository: identityRepo,
		codeStore:          codes,
		tokenProvider:      tokenProv,
		providers:          make(map[string]Provider, len(options.Providers)),
		redirectAllowed:    options.RedirectAllowed,
		otpSender:          options.OTPSender,
		logger:             options.Logger,
		now:                options.Now,
	}

	for _, provider := range options.Providers {
		service.providers[provider.Name()] = provider
	}
	if service.logger == nil {
		service.logger = slog.Default()
	}
	if service.otpSender == nil {
		service.otpSender = LogOTPSender{Logger: service.logger}
	}
	if service.redirectAllowed == nil {
		service.redirectAllowed = func(string) bool { return false }
	}
	if service.now == nil {
		service.now = time.Now
	}
	return service
}

// LoginSession is the token pair handed to a signed-in client.
type LoginSession struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	TokenType             string    `json:"token_type"`
	ExpiresIn             int       `json:"expires_in"`
	RefreshTokenExpiresAt time.Time `json:"-"`
	User                  *User     `json:"user"`
}

// ClientInfo identifies the device opening a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Client   ClientInfo
}

/*
Register validates, hashes, and persists a brand new account, then signs it in.

Description: The username is derived from the full name and retried on
collision. Every new account starts as a reader.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *LoginSession: Tokens for the new account
  - error: Conflict (email exists), validation or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*LoginSession, error) {
	if err := validate.PasswordRule(input.Password); err != nil {
		return nil, apperr.ValidationError(err.Error(), apperr.FieldError{Field: FieldPassword, Message: err.Error()})
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user, err := service.createUser(context, &User{
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hashedPassword,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         sec.RoleReader,
	})
	if err != nil {
		return nil, err
	}

	metrics.AuthEventsTotal.WithLabelValues(metrics.EventSignUp).Inc()
	service.logger.InfoContext(context, "user_registered", slog.String("user_id", user.ID), slog.String("username", user.Username))

	return service.openSession(context, user, input.Client)
}

// createUser assigns an id and a generated username, retrying on username collisions.
func (service *Service) createUser(context context.Context, user *User) (*User, error) {
	user.ID = uuid.New()

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		username, err := GenerateUsername(user.FullName)
		if err != nil {
			return nil, fmt.Errorf("auth_service_generate_username_failed: %w", err)
		}
		user.Username = username

		err = service.userRepository.Create(context, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
	}

	return nil, apperr.Conflict("Could not allocate a unique username, please try again")
}

/*
GenerateUsername builds "<stem><4 digits>" where stem is the first eight
characters of the slugified full name with separators removed.

Example:

	GenerateUsername("Ana María López") // "anamaria4821"
*/
func GenerateUsername(fullName string) (string, error) {
	stem := slug.Compact(fullName)
	if len(stem) > usernameStemLength {
		stem = stem[:usernameStemLength]
	}
	if stem == "" {
		stem = "reader"
	}

	suffix, err := sec.RandomInt(1000, 9999)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", stem, suffix), nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Username or email
	Password string
	Client   ClientInfo
}

/*
Login validates user credentials and issues security tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: Unauthorized, Suspended or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	login := strings.TrimSpace(input.Login)

	var user *User
	var err error
	if strings.Contains(login, "@") {
		user, err = service.userRepository.FindByEmail(context, login)
	} else {
		user, err = service.userRepository.FindByUsername(context, login)
	}

	// Generic message to prevent enumeration.
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if user.PasswordHash == "" || !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if user.IsBanned() {
		metrics.AuthEventsTotal.WithLabelValues(metrics.EventSuspended).Inc()
		return nil, apperr.Suspended("Your account has been suspended")
	}

	metrics.AuthEventsTotal.WithLabelValues(metrics.EventSignIn).Inc()
	return service.openSession(context, user, input.Client)
}

// openSession mints an access token and a tracked refresh token for user.
func (service *Service) openSession(context context.Context, user *User, client ClientInfo) (*LoginSession, error) {
	refreshToken, err := sec.GenerateSecureToken(refreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := service.now().Add(constants.RefreshTokenTTL)
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		ExpiresAt: expiresAt,
	}
	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), session.ID, constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		TokenType:             "Bearer",
		ExpiresIn:             int(constants.AccessTokenTTL / time.Second),
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout permanently revokes the session behind a refresh token.

Description: Idempotent; unknown or already revoked tokens succeed.
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
RefreshSession implements refresh token rotation.

Description: The presented token is revoked before a new pair is issued so a
replayed token never works twice. Suspended accounts lose the session.

Parameters:
  - context: context.Context
  - refreshToken: string
  - client: ClientInfo

Returns:
  - *LoginSession: New session credentials
  - error: Unauthorized, Suspended or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string, client ClientInfo) (*LoginSession, error) {
	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}
	if user.IsBanned() {
		metrics.AuthEventsTotal.WithLabelValues(metrics.EventSuspended).Inc()
		return nil, apperr.Suspended("Your account has been suspended")
	}

	metrics.AuthEventsTotal.WithLabelValues(metrics.EventRefresh).Inc()
	return service.openSession(context, user, client)
}

// CurrentUser returns the account behind an authenticated session.
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// # Password Recovery

func otpKey(email string) string {
	return constants.RedisPrefixPasswordOTP + strings.ToLower(strings.TrimSpace(email))
}

/*
RequestPasswordOTP issues a numeric one-time code for the account behind email.

Description: Unknown addresses succeed silently to prevent enumeration. A new
request replaces any earlier code.
*/
func (service *Service) RequestPasswordOTP(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	code, err := sec.GenerateOTP(constants.PasswordOTPDigits)
	if err != nil {
		return fmt.Errorf("auth_service_generate_otp_failed: %w", err)
	}

	if err := service.codeStore.Put(context, otpKey(email), user.ID+":"+sec.HashToken(code), constants.PasswordOTPTTL); err != nil {
		return fmt.Errorf("auth_service_save_otp_failed: %w", err)
	}

	return service.otpSender.SendPasswordOTP(context, user.Email, code)
}

/*
ResetPassword completes the forgot-password flow with an emailed code.

Description: Verifies the code, stores the new hash, consumes the code and
revokes every session of the account.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - newPassword: string

Returns:
  - error: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, email, code, newPassword string) error {
	if err := validate.PasswordRule(newPassword); err != nil {
		return apperr.ValidationError(err.Error(), apperr.FieldError{Field: FieldNewPassword, Message: err.Error()})
	}

	invalid := apperr.ValidationError("Invalid or expired code", apperr.FieldError{Field: FieldOTP, Message: "is invalid or expired"})

	stored, err := service.codeStore.Peek(context, otpKey(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return invalid
		}
		return err
	}

	userID, hash, found := strings.Cut(stored, ":")
	if !found || subtle.ConstantTimeCompare([]byte(hash), []byte(sec.HashToken(code))) != 1 {
		return invalid
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	_ = service.codeStore.Delete(context, otpKey(email))
	_ = service.sessionRepository.RevokeAll(context, userID)

	metrics.AuthEventsTotal.WithLabelValues(metrics.EventReset).Inc()
	service.logger.InfoContext(context, "password_reset", slog.String("user_id", userID))
	return nil
}

/*
ChangePassword lets an authenticated user replace their password.

Description: The current password must match. Every other session of the
account is revoked; the calling session stays signed in.
*/
func (service *Service) ChangePassword(context context.Context, userID, sessionID, currentPassword, newPassword string) error {
	if err := validate.PasswordRule(newPassword); err != nil {
		return apperr.ValidationError(err.Error(), apperr.FieldError{Field: FieldNewPassword, Message: err.Error()})
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash != "" && !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	if sessionID != "" {
		_ = service.sessionRepository.RevokeOthers(context, userID, sessionID)
	}
	return nil
}
