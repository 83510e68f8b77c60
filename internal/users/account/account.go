// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package account handles profiles, reading interests, reader preferences,
device sessions and account moderation.

# Architecture

  - Entities: Profile, PublicProfile, Interest, Preferences, SessionInfo.
  - Repositories: Postgres for persistent data, Redis for the ban cache.
  - Moderation: a ban revokes every session and is enforced per request by
    [BanChecker] through middleware.RequireActive.
*/
package account

import (
	"context"
	"time"

	"github.com/genra-app/genra/internal/platform/sec"
)

// # Domain Entities

// Profile is the private view of the signed-in account.
type Profile struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	FullName        string       `json:"full_name"`
	Username        string       `json:"username"`
	AvatarURL       string       `json:"avatar_url,omitempty"`
	Bio             string       `json:"bio,omitempty"`
	Website         string       `json:"website,omitempty"`
	Role            sec.UserRole `json:"role"`
	IsVerified      bool         `json:"is_verified"`
	Coins           int          `json:"coins"`
	Interests       []Interest   `json:"interests"`
	IsBanned        bool         `json:"is_banned"`
	BanReason       string       `json:"ban_reason,omitempty"`
	NeedsOnboarding bool         `json:"needs_onboarding"`
	CreatedAt       time.Time    `json:"created_at"`
}

// PublicProfile is what other readers can see.
type PublicProfile struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	FullName  string       `json:"full_name"`
	AvatarURL string       `json:"avatar_url,omitempty"`
	Bio       string       `json:"bio,omitempty"`
	Website   string       `json:"website,omitempty"`
	Role      sec.UserRole `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

// Interest is a genre the reader follows.
type Interest struct {
	GenreID int    `json:"genre_id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
}

// Reader display settings.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeSepia = "sepia"

	FontSerif = "serif"
	FontSans  = "sans"

	MinFontSize    = 12
	MaxFontSize    = 32
	MinLineSpacing = 1.0
	MaxLineSpacing = 2.5
)

// Preferences customizes the chapter reader.
type Preferences struct {
	UserID      string    `json:"user_id"`
	FontSize    int       `json:"font_size"`
	Theme       string    `json:"theme"`
	LineSpacing float64   `json:"line_spacing"`
	FontFamily  string    `json:"font_family"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultPreferences mirrors the column defaults.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{UserID: userID, FontSize: 16, Theme: ThemeLight, LineSpacing: 1.5, FontFamily: FontSerif}
}

// SessionInfo is a device session without its token hash.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`
}

// ProfileChanges carries the fields a PATCH may touch; nil means unchanged.
type ProfileChanges struct {
	FullName *string
	Username *string
	Bio      *string
	Website  *string
}

// # Repository Contracts

// AccountRepository defines the persistence contract for accounts.
type AccountRepository interface {

	/*
		FindByID loads the private profile (interests are filled by the service).

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	FindPublic(context context.Context, id string) (*PublicProfile, error)

	/*
		Update applies non-nil changes.

		Returns:
		  - error: apperr.Conflict when the username is taken
	*/
	Update(context context.Context, id string, changes ProfileChanges) error

	// UsernameTaken ignores the account identified by exceptUserID.
	UsernameTaken(context context.Context, username, exceptUserID string) (bool, error)

	SetAvatar(context context.Context, id, avatarURL string) error

	// SetBan suspends the account when reason is non-nil and lifts the ban otherwise.
	SetBan(context context.Context, id string, reason *string) error

	IsBanned(context context.Context, id string) (bool, error)

	SoftDelete(context context.Context, id string) error
}

// InterestRepository stores the genres a reader follows.
type InterestRepository interface {
	List(context context.Context, userID string) ([]Interest, error)

	/*
		Replace swaps the whole interest set atomically.

		Returns:
		  - error: apperr.Unprocessable for unknown genres
	*/
	Replace(context context.Context, userID string, genreIDs []int) error
}

// PreferencesRepository defines the persistence contract for reader settings.
type PreferencesRepository interface {
	// FindByUserID returns apperr.NotFound when nothing was saved yet.
	FindByUserID(context context.Context, userID string) (*Preferences, error)
	Upsert(context context.Context, prefs *Preferences) error
}

// SessionRepository defines the visibility and revocation contract for device sessions.
type SessionRepository interface {
	FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error)

	// Revoke only touches a session owned by userID.
	Revoke(context context.Context, userID, sessionID string) error
	RevokeOthers(context context.Context, userID, currentSessionID string) error
	RevokeAll(context context.Context, userID string) error
}
