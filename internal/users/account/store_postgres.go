// Copyright (c) 2026 GenrA. All rights reserved.

package account

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/database/schema"
	"github.com/genra-app/genra/internal/platform/dberr"
	"github.com/genra-app/genra/internal/platform/postgres"
)

// # Repository Definitions

// PostgresAccountRepository implements [AccountRepository].
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL-backed account repository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// PostgresInterestRepository implements [InterestRepository].
type PostgresInterestRepository struct {
	pool *pgxpool.Pool
}

// NewInterestRepository creates a new PostgreSQL-backed interest repository.
func NewInterestRepository(pool *pgxpool.Pool) *PostgresInterestRepository {
	return &PostgresInterestRepository{pool: pool}
}

// PostgresPreferencesRepository implements [PreferencesRepository].
type PostgresPreferencesRepository struct {
	pool *pgxpool.Pool
}

// NewPreferencesRepository creates a new PostgreSQL-backed preferences repository.
func NewPreferencesRepository(pool *pgxpool.Pool) *PostgresPreferencesRepository {
	return &PostgresPreferencesRepository{pool: pool}
}

// PostgresSessionRepository implements [SessionRepository].
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// # Account Implementation

/*
FindByID retrieves the private profile of an active account.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Profile: Hydrated entity without interests
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Profile, error) {
	account := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, COALESCE(%s, ''), COALESCE(%s, ''), COALESCE(%s, ''),
		       %s, %s, %s, %s IS NOT NULL, COALESCE(%s, ''), %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		account.ID, account.Email, account.DisplayName, account.Username, account.AvatarURL, account.Bio, account.Website,
		account.Role, account.IsVerified, account.Coins, account.BannedAt, account.BanReason, account.CreatedAt,
		account.Table,
		account.ID, account.DeletedAt,
	)

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Username, &profile.AvatarURL, &profile.Bio, &profile.Website,
		&profile.Role, &profile.IsVerified, &profile.Coins, &profile.IsBanned, &profile.BanReason, &profile.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return profile, nil
}

// FindPublic retrieves the public card of an active, non-suspended account.
func (repository *PostgresAccountRepository) FindPublic(context context.Context, id string) (*PublicProfile, error) {
	account := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, COALESCE(%s, ''), COALESCE(%s, ''), COALESCE(%s, ''), %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		account.ID, account.Username, account.DisplayName, account.AvatarURL, account.Bio, account.Website,
		account.Role, account.CreatedAt,
		account.Table,
		account.ID, account.DeletedAt,
	)

	profile := &PublicProfile{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &profile.Bio, &profile.Website,
		&profile.Role, &profile.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return profile, nil
}

/*
Update applies the non-nil fields of changes.

Description: The statement is assembled from the provided fields only, so a
PATCH never overwrites columns it did not mention.

Returns:
  - error: apperr.Conflict on a username race, NotFound, or database errors
*/
func (repository *PostgresAccountRepository) Update(context context.Context, id string, changes ProfileChanges) error {
	account := schema.UserAccount

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", account.Table, account.UpdatedAt))
	args := []any{}
	argID := 1

	set := func(column string, value *string) {
		if value == nil {
			return
		}
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", column, argID))
		args = append(args, *value)
		argID++
	}
	set(account.DisplayName, changes.FullName)
	set(account.Username, changes.Username)
	set(account.Bio, changes.Bio)
	set(account.Website, changes.Website)

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s IS NULL", account.ID, argID, account.DeletedAt))
	args = append(args, id)

	tag, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		if dberr.IsUniqueViolation(err, "account_username_key") {
			return apperr.Conflict("Username is already taken")
		}
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// UsernameTaken checks active accounts other than exceptUserID.
func (repository *PostgresAccountRepository) UsernameTaken(context context.Context, username, exceptUserID string) (bool, error) {
	account := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE %s = $1 AND %s IS NULL AND ($2 = '' OR %s::text <> $2)
		)`,
		account.Table, account.Username, account.DeletedAt, account.ID,
	)

	var taken bool
	if err := repository.pool.QueryRow(context, query, username, exceptUserID).Scan(&taken); err != nil {
		return false, fmt.Errorf("postgres_account_repo_username_taken_failed: %w", err)
	}
	return taken, nil
}

// SetAvatar stores the public URL of the latest avatar.
func (repository *PostgresAccountRepository) SetAvatar(context context.Context, id, avatarURL string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.UserAccount.Table, schema.UserAccount.AvatarURL, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt)

	tag, err := repository.pool.Exec(context, query, id, avatarURL)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_avatar_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// SetBan sets or clears bannedat/banreason.
func (repository *PostgresAccountRepository) SetBan(context context.Context, id string, reason *string) error {
	account := schema.UserAccount
	var query string
	var args []any
	if reason != nil {
		query = fmt.Sprintf("UPDATE %s SET %s = COALESCE(%s, NOW()), %s = $2, %s = NOW() WHERE %s = $1 AND %s IS NULL",
			account.Table, account.BannedAt, account.BannedAt, account.BanReason, account.UpdatedAt, account.ID, account.DeletedAt)
		args = []any{id, *reason}
	} else {
		query = fmt.Sprintf("UPDATE %s SET %s = NULL, %s = NULL, %s = NOW() WHERE %s = $1 AND %s IS NULL",
			account.Table, account.BannedAt, account.BanReason, account.UpdatedAt, account.ID, account.DeletedAt)
		args = []any{id}
	}

	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_ban_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// IsBanned reports the suspension state; unknown accounts are not banned.
func (repository *PostgresAccountRepository) IsBanned(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s IS NOT NULL)",
		schema.UserAccount.Table, schema.UserAccount.ID, schema.UserAccount.BannedAt)

	var banned bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&banned); err != nil {
		return false, fmt.Errorf("postgres_account_repo_is_banned_failed: %w", err)
	}
	return banned, nil
}

// SoftDelete flags the account as deleted.
func (repository *PostgresAccountRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.UserAccount.Table, schema.UserAccount.DeletedAt, schema.UserAccount.ID, schema.UserAccount.DeletedAt)
	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres_account_repo_soft_delete_failed: %w", err)
	}
	return nil
}

// # Interest Implementation

// List returns the caller's genres in catalogue order.
func (repository *PostgresInterestRepository) List(context context.Context, userID string) ([]Interest, error) {
	query := fmt.Sprintf(`
		SELECT g.%s, g.%s, g.%s
		FROM %s i
		JOIN %s g ON g.%s = i.%s
		WHERE i.%s = $1
		ORDER BY g.%s`,
		schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.UserInterest.Table,
		schema.CoreGenre.Table, schema.CoreGenre.ID, schema.UserInterest.GenreID,
		schema.UserInterest.UserID,
		schema.CoreGenre.SortOrder,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_interest_repo_list_failed: %w", err)
	}

	interests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Interest, error) {
		var interest Interest
		err := row.Scan(&interest.GenreID, &interest.Name, &interest.Slug)
		return interest, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_interest_repo_list_failed: %w", err)
	}
	return interests, nil
}

/*
Replace deletes the current set and inserts genreIDs in one transaction.

Returns:
  - error: apperr.Unprocessable when a genre does not exist
*/
func (repository *PostgresInterestRepository) Replace(context context.Context, userID string, genreIDs []int) error {
	return postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.UserInterest.Table, schema.UserInterest.UserID)
		if _, err := tx.Exec(context, deleteQuery, userID); err != nil {
			return fmt.Errorf("postgres_interest_repo_clear_failed: %w", err)
		}

		insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) SELECT $1, unnest($2::int[])",
			schema.UserInterest.Table, schema.UserInterest.UserID, schema.UserInterest.GenreID)
		if _, err := tx.Exec(context, insertQuery, userID, genreIDs); err != nil {
			return dberr.Wrap(err, "Genre")
		}
		return nil
	})
}

// # Preferences Implementation

// FindByUserID loads saved reader settings; line spacing is stored in tenths.
func (repository *PostgresPreferencesRepository) FindByUserID(context context.Context, userID string) (*Preferences, error) {
	prefs := schema.UserReadingPreference
	query := fmt.Sprintf("SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1",
		prefs.UserID, prefs.FontSize, prefs.Theme, prefs.LineSpacing, prefs.FontFamily, prefs.UpdatedAt,
		prefs.Table, prefs.UserID)

	result := &Preferences{}
	var tenths int
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&result.UserID, &result.FontSize, &result.Theme, &tenths, &result.FontFamily, &result.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Preferences")
	}
	result.LineSpacing = float64(tenths) / 10
	return result, nil
}

// Upsert saves reader settings idempotently.
func (repository *PostgresPreferencesRepository) Upsert(context context.Context, preferences *Preferences) error {
	prefs := schema.UserReadingPreference
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()`,
		prefs.Table, prefs.UserID, prefs.FontSize, prefs.Theme, prefs.LineSpacing, prefs.FontFamily, prefs.UpdatedAt,
		prefs.UserID,
		prefs.FontSize, prefs.FontSize, prefs.Theme, prefs.Theme, prefs.LineSpacing, prefs.LineSpacing,
		prefs.FontFamily, prefs.FontFamily, prefs.UpdatedAt,
	)

	tenths := int(math.Round(preferences.LineSpacing * 10))
	_, err := repository.pool.Exec(context, query,
		preferences.UserID, preferences.FontSize, preferences.Theme, tenths, preferences.FontFamily,
	)
	if err != nil {
		return dberr.Wrap(err, "Preferences")
	}
	return nil
}

// # Session Implementation

// FindActiveByUserID lists non-revoked, unexpired sessions, newest first.
func (repository *PostgresSessionRepository) FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error) {
	session := schema.UserSession
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
		ORDER BY %s DESC`,
		session.ID, session.UserAgent, session.IPAddress, session.CreatedAt, session.ExpiresAt,
		session.Table,
		session.UserID, session.IsRevoked, session.ExpiresAt,
		session.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_active_failed: %w", err)
	}

	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SessionInfo, error) {
		var info SessionInfo
		err := row.Scan(&info.ID, &info.UserAgent, &info.IPAddress, &info.CreatedAt, &info.ExpiresAt)
		return info, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_active_failed: %w", err)
	}
	return sessions, nil
}

// Revoke marks a single session of userID as revoked.
func (repository *PostgresSessionRepository) Revoke(context context.Context, userID, sessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2",
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.ID, schema.UserSession.UserID)

	tag, err := repository.pool.Exec(context, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Session")
	}
	return nil
}

// RevokeOthers marks all sessions except the current one as revoked.
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, userID, currentSessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s::text <> $2 AND %s = FALSE",
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.UserID,
		schema.UserSession.ID, schema.UserSession.IsRevoked)
	if _, err := repository.pool.Exec(context, query, userID, currentSessionID); err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_others_failed: %w", err)
	}
	return nil
}

// RevokeAll terminates every session for a user.
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE",
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.UserID, schema.UserSession.IsRevoked)
	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}
	return nil
}
