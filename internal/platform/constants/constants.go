// Copyright (c) 2026 GenrA. All rights reserved.

// Package constants holds the fixed timings, limits and key names of the GenrA API.
package constants

import "time"

// # Metadata

const (
	AppName    = "genra-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout bounds a whole request and doubles as the SQL statement timeout.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is the drain window for in-flight requests.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// Per client IP.
	DefaultRateLimitRPS   = 50.0
	DefaultRateLimitBurst = 100

	RateLimitCleanupInterval = time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "genra.app"

	// AccessTokenTTL is the lifetime of a signed access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a refresh token session.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// PasswordOTPTTL is how long an emailed password reset code stays valid.
	PasswordOTPTTL = 10 * time.Minute

	// PasswordOTPDigits is the length of the password reset code.
	PasswordOTPDigits = 6

	// OAuthStateTTL bounds the time between authorize and callback.
	OAuthStateTTL = 10 * time.Minute

	// OAuthCodeTTL bounds the time a one-time app code can be exchanged.
	OAuthCodeTTL = 5 * time.Minute

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # Accounts

const (
	// MinOnboardingGenres is the number of interests required to finish onboarding.
	MinOnboardingGenres = 3

	// BanCacheTTL is how long a ban lookup is cached in Redis.
	BanCacheTTL = 60 * time.Second

	// MaxAvatarBytes is the upper bound for an avatar upload.
	MaxAvatarBytes = 5 << 20
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderAuthorization = "Authorization"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixPasswordOTP = "auth:password_otp:"
	RedisPrefixOAuthState  = "auth:oauth_state:"
	RedisPrefixOAuthCode   = "auth:oauth_code:"
	RedisPrefixBan         = "account:ban:"
	RedisKeyGenres         = "catalog:genres"
)

// GenreCacheTTL is how long the genre list is cached.
const GenreCacheTTL = 10 * time.Minute
