// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package auth implements identity and session management for GenrA readers.

It covers email/password registration and sign-in, refresh-token rotation,
password recovery through short-lived one-time codes, and third-party sign-in
through OAuth2 providers.

# Architecture

  - Service: orchestrates the use cases (Register, Login, Refresh, OAuth).
  - Repositories: Postgres for accounts, sessions and identities; Redis for
    volatile codes (password OTPs, OAuth state, one-time exchange codes).
  - Handler: the JSON transport under /api/v1/auth.
*/
package auth

import (
	"time"

	"github.com/genra-app/genra/internal/platform/sec"
)

// # Domain Entities

// User is a registered GenrA account.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"full_name"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	Coins        int          `json:"coins"`
	BannedAt     *time.Time   `json:"banned_at,omitempty"`
	BanReason    string       `json:"ban_reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsBanned reports whether the account is suspended.
func (user *User) IsBanned() bool {
	return user.BannedAt != nil
}

// Session is an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity links an external provider subject to an account.
type Identity struct {
	Provider string
	Subject  string
	UserID   string
	Email    string
}

// # Field Identifiers

const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "full_name"
	FieldLogin           = "login"
	FieldOTP             = "otp"
	FieldCode            = "code"
	FieldRefreshToken    = "refresh_token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldRedirectTo      = "redirect_to"
	FieldFlow            = "flow"
	FieldMessage         = "message"
)
