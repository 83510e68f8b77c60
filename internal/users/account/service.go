// Copyright (c) 2026 GenrA. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/metrics"
	"github.com/genra-app/genra/internal/platform/storage"
	"github.com/genra-app/genra/internal/platform/validate"
)

// # Service Layer

// BanCache is the write side of the ban cache.
type BanCache interface {
	Remember(context context.Context, userID string, banned bool) error
}

// Service orchestrates profile, interest, preference, session and moderation use cases.
type Service struct {
	accountRepository     AccountRepository
	interestRepository    InterestRepository
	preferencesRepository PreferencesRepository
	sessionRepository     SessionRepository
	avatars               storage.AvatarStore
	bans                  BanCache
	logger                *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	interestRepo InterestRepository,
	preferencesRepo PreferencesRepository,
	sessionRepo SessionRepository,
	avatars storage.AvatarStore,
	bans BanCache,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository:     accountRepo,
		interestRepository:    interestRepo,
		preferencesRepository: preferencesRepo,
		sessionRepository:     sessionRepo,
		avatars:               avatars,
		bans:                  bans,
		logger:                logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private profile including interests.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: The hydrated profile with NeedsOnboarding computed
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	profile, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	interests, err := service.interestRepository.List(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_interests_failed: %w", err)
	}
	if interests == nil {
		interests = []Interest{}
	}

	profile.Interests = interests
	profile.NeedsOnboarding = len(interests) < constants.MinOnboardingGenres
	return profile, nil
}

/*
UpdateProfile applies a partial set of changes to the caller's profile.

Description: Usernames are lower-cased and must follow the username rule.
Empty full names are rejected.

Returns:
  - *Profile: The updated profile
  - error: Validation, Conflict (username taken) or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, changes ProfileChanges) (*Profile, error) {
	validator := &validate.Validator{}

	if changes.FullName != nil {
		trimmed := strings.TrimSpace(*changes.FullName)
		changes.FullName = &trimmed
		validator.Required(FieldFullName, trimmed).MaxLen(FieldFullName, trimmed, 100)
	}
	if changes.Username != nil {
		normalized := strings.ToLower(strings.TrimSpace(*changes.Username))
		changes.Username = &normalized
		validator.Username(FieldUsername, normalized)
	}
	if changes.Bio != nil {
		validator.MaxLen(FieldBio, *changes.Bio, 500)
	}
	if changes.Website != nil && *changes.Website != "" {
		validator.URL(FieldWebsite, *changes.Website)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if changes.Username != nil {
		taken, err := service.accountRepository.UsernameTaken(context, *changes.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("Username is already taken")
		}
	}

	if err := service.accountRepository.Update(context, userID, changes); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_profile_updated", slog.String("user_id", userID))
	return service.GetProfile(context, userID)
}

/*
CheckUsername reports whether username is free for the caller.

Description: The caller's own current username counts as available.
*/
func (service *Service) CheckUsername(context context.Context, username, callerID string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if err := validate.UsernameRule(normalized); err != nil {
		return false, apperr.ValidationError(err.Error(), apperr.FieldError{Field: FieldUsername, Message: err.Error()})
	}

	taken, err := service.accountRepository.UsernameTaken(context, normalized, callerID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// UploadAvatar stores the image and points the profile at it.
func (service *Service) UploadAvatar(context context.Context, userID string, data []byte) (*Profile, error) {
	url, err := service.avatars.Put(context, userID, data)
	if err != nil {
		return nil, err
	}

	if err := service.accountRepository.SetAvatar(context, userID, url); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_avatar_updated", slog.String("user_id", userID), slog.String("url", url))
	return service.GetProfile(context, userID)
}

// GetPublicProfile returns the profile other readers see.
func (service *Service) GetPublicProfile(context context.Context, userID string) (*PublicProfile, error) {
	return service.accountRepository.FindPublic(context, userID)
}

/*
DeleteAccount soft-deletes the account and signs it out everywhere.
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {
	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		service.logger.WarnContext(context, "user_session_cleanup_failed", slog.String("user_id", userID), slog.Any("error", err))
	}

	service.logger.InfoContext(context, "user_account_deleted", slog.String("user_id", userID))
	return nil
}

// # Interests

// GetInterests lists the genres the caller follows.
func (service *Service) GetInterests(context context.Context, userID string) ([]Interest, error) {
	interests, err := service.interestRepository.List(context, userID)
	if err != nil {
		return nil, err
	}
	if interests == nil {
		interests = []Interest{}
	}
	return interests, nil
}

/*
SetInterests replaces the caller's genre set.

Description: Completing onboarding requires at least three genres; later edits
need at least one. Duplicate ids are collapsed.

Parameters:
  - context: context.Context
  - userID: string
  - genreIDs: []int
  - onboarding: bool

Returns:
  - []Interest: The stored set
  - error: Validation or Unprocessable (unknown genre)
*/
func (service *Service) SetInterests(context context.Context, userID string, genreIDs []int, onboarding bool) ([]Interest, error) {
	unique := slices.Clone(genreIDs)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	minimum := 1
	if onboarding {
		minimum = constants.MinOnboardingGenres
	}
	if len(unique) < minimum {
		return nil, apperr.ValidationError(
			fmt.Sprintf("Select at least %d genres", minimum),
			apperr.FieldError{Field: FieldGenres, Message: fmt.Sprintf("must contain at least %d genres", minimum)},
		)
	}

	if err := service.interestRepository.Replace(context, userID, unique); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_interests_updated", slog.String("user_id", userID), slog.Int("count", len(unique)))
	return service.GetInterests(context, userID)
}

// # Preferences

// GetPreferences returns saved settings or the defaults.
func (service *Service) GetPreferences(context context.Context, userID string) (*Preferences, error) {
	prefs, err := service.preferencesRepository.FindByUserID(context, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return DefaultPreferences(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

/*
UpdatePreferences validates and saves reader settings.

Description: Line spacing is kept to one decimal place.
*/
func (service *Service) UpdatePreferences(context context.Context, prefs *Preferences) (*Preferences, error) {
	prefs.LineSpacing = math.Round(prefs.LineSpacing*10) / 10

	validator := &validate.Validator{}
	validator.Range(FieldFontSize, prefs.FontSize, MinFontSize, MaxFontSize).
		OneOf(FieldTheme, prefs.Theme, ThemeLight, ThemeDark, ThemeSepia).
		OneOf(FieldFontFamily, prefs.FontFamily, FontSerif, FontSans).
		Custom(FieldLineSpacing, prefs.LineSpacing < MinLineSpacing || prefs.LineSpacing > MaxLineSpacing, "must be between 1.0 and 2.5")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.preferencesRepository.Upsert(context, prefs); err != nil {
		return nil, fmt.Errorf("account_service_update_preferences_failed: %w", err)
	}
	return service.GetPreferences(context, prefs.UserID)
}

// # Sessions

// ListSessions marks the session behind the current access token.
func (service *Service) ListSessions(context context.Context, userID, currentSessionID string) ([]SessionInfo, error) {
	sessions, err := service.sessionRepository.FindActiveByUserID(context, userID)
	if err != nil {
		return nil, err
	}
	for index := range sessions {
		sessions[index].IsCurrent = sessions[index].ID == currentSessionID
	}
	if sessions == nil {
		sessions = []SessionInfo{}
	}
	return sessions, nil
}

// RevokeSession signs out one of the caller's devices.
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	return service.sessionRepository.Revoke(context, userID, sessionID)
}

// RevokeOtherSessions signs out every device but the current one.
func (service *Service) RevokeOtherSessions(context context.Context, userID, currentSessionID string) error {
	return service.sessionRepository.RevokeOthers(context, userID, currentSessionID)
}

// # Moderation

/*
Ban suspends an account.

Description: All sessions are revoked and the ban cache is updated right away
so the next request of the banned reader is rejected.

Parameters:
  - context: context.Context
  - adminID: string
  - userID: string
  - reason: string

Returns:
  - error: Forbidden (self-ban), NotFound or storage failures
*/
func (service *Service) Ban(context context.Context, adminID, userID, reason string) error {
	if adminID == userID {
		return apperr.Forbidden("You cannot suspend your own account")
	}

	reason = strings.TrimSpace(reason)
	if err := service.accountRepository.SetBan(context, userID, &reason); err != nil {
		return err
	}
	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		return fmt.Errorf("account_service_ban_revoke_failed: %w", err)
	}
	if err := service.bans.Remember(context, userID, true); err != nil {
		service.logger.WarnContext(context, "user_ban_cache_failed", slog.String("user_id", userID), slog.Any("error", err))
	}

	metrics.AuthEventsTotal.WithLabelValues(metrics.EventSuspended).Inc()
	service.logger.InfoContext(context, "user_banned", slog.String("user_id", userID), slog.String("admin_id", adminID))
	return nil
}

// Unban lifts a suspension.
func (service *Service) Unban(context context.Context, adminID, userID string) error {
	if err := service.accountRepository.SetBan(context, userID, nil); err != nil {
		return err
	}
	if err := service.bans.Remember(context, userID, false); err != nil {
		service.logger.WarnContext(context, "user_ban_cache_failed", slog.String("user_id", userID), slog.Any("error", err))
	}

	service.logger.InfoContext(context, "user_unbanned", slog.String("user_id", userID), slog.String("admin_id", adminID))
	return nil
}

// # Field Identifiers

const (
	FieldFullName    = "full_name"
	FieldUsername    = "username"
	FieldBio         = "bio"
	FieldWebsite     = "website"
	FieldGenres      = "genres"
	FieldFontSize    = "font_size"
	FieldTheme       = "theme"
	FieldLineSpacing = "line_spacing"
	FieldFontFamily  = "font_family"
	FieldReason      = "reason"
	FieldAvatar      = "avatar"
)
