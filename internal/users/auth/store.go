// Copyright (c) 2026 GenrA. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail matches case-insensitively.
	FindByEmail(context context.Context, email string) (*User, error)

	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: [ErrUsernameTaken] when only the username collided,
		    apperr.Conflict for a duplicate email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	UpdatePassword(context context.Context, userID, newHash string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active, unexpired session for a token hash.

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound when missing, revoked or expired
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	Revoke(context context.Context, sessionID string) error
	RevokeAll(context context.Context, userID string) error
	RevokeOthers(context context.Context, userID, currentSessionID string) error
	DeleteExpired(context context.Context) error
}

// IdentityRepository stores links between provider subjects and accounts.
type IdentityRepository interface {
	Find(context context.Context, provider, subject string) (*Identity, error)
	Create(context context.Context, identity *Identity) error
}

// # Volatile Data Access

// CodeStore keeps short-lived single-use values (OTPs, OAuth state, exchange codes).
type CodeStore interface {

	/*
		Put stores value under key for ttl, replacing any previous value.
	*/
	Put(context context.Context, key, value string, ttl time.Duration) error

	/*
		Take atomically reads and deletes key.

		Returns:
		  - string: The stored value
		  - error: apperr.NotFound when the key is absent or expired
	*/
	Take(context context.Context, key string) (string, error)

	// Peek reads key without consuming it.
	Peek(context context.Context, key string) (string, error)

	Delete(context context.Context, key string) error
}
