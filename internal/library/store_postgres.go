// Copyright (c) 2026 GenrA. All rights reserved.

package library

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genra-app/genra/internal/platform/database/schema"
	"github.com/genra-app/genra/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed library store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Bookmarks

// ListBookmarks returns the shelf ordered by bookmark time, newest first.
func (repository *PostgresRepository) ListBookmarks(context context.Context, userID string, limit, offset int) ([]Bookmark, int, error) {
	query := fmt.Sprintf(`
		SELECT b.%s, b.%s, COALESCE(a.%s, ''), COALESCE(b.%s, ''), b.%s, e.%s,
		       COUNT(*) OVER() AS total_count
		FROM %s e
		JOIN %s b ON b.%s = e.%s
		JOIN %s a ON a.%s = b.%s
		WHERE e.%s = $1 AND b.%s IS NULL
		ORDER BY e.%s DESC, b.%s DESC
		LIMIT $2 OFFSET $3
	`,
		schema.CoreBook.ID, schema.CoreBook.Title, schema.UserAccount.DisplayName,
		schema.CoreBook.CoverURL, schema.CoreBook.Rating, schema.LibraryEntry.CreatedAt,
		schema.LibraryEntry.Table,
		schema.CoreBook.Table, schema.CoreBook.ID, schema.LibraryEntry.BookID,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreBook.AuthorID,
		schema.LibraryEntry.UserID, schema.CoreBook.DeletedAt,
		schema.LibraryEntry.CreatedAt, schema.CoreBook.ID,
	)

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Bookmark")
	}

	var total int
	bookmarks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Bookmark, error) {
		var bookmark Bookmark
		err := row.Scan(&bookmark.BookID, &bookmark.Title, &bookmark.AuthorName, &bookmark.CoverURL,
			&bookmark.Rating, &bookmark.BookmarkedAt, &total)
		return bookmark, err
	})
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Bookmark")
	}
	return bookmarks, total, nil
}

func (repository *PostgresRepository) IsBookmarked(context context.Context, userID, bookID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.LibraryEntry.Table, schema.LibraryEntry.UserID, schema.LibraryEntry.BookID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, userID, bookID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Bookmark")
	}
	return exists, nil
}

func (repository *PostgresRepository) AddBookmark(context context.Context, userID, bookID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		schema.LibraryEntry.Table, schema.LibraryEntry.UserID, schema.LibraryEntry.BookID)

	if _, err := repository.pool.Exec(context, query, userID, bookID); err != nil {
		return dberr.Wrap(err, "Bookmark")
	}
	return nil
}

func (repository *PostgresRepository) RemoveBookmark(context context.Context, userID, bookID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.LibraryEntry.Table, schema.LibraryEntry.UserID, schema.LibraryEntry.BookID)

	if _, err := repository.pool.Exec(context, query, userID, bookID); err != nil {
		return dberr.Wrap(err, "Bookmark")
	}
	return nil
}

// # Reading Progress

func (repository *PostgresRepository) ChapterInBook(context context.Context, chapterID, bookID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL)`,
		schema.CoreChapter.Table, schema.CoreChapter.ID, schema.CoreChapter.BookID, schema.CoreChapter.DeletedAt)

	var exists bool
	if err := repository.pool.QueryRow(context, query, chapterID, bookID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Chapter")
	}
	return exists, nil
}

/*
SaveProgress performs the ordered upsert.

Description: The conflict branch only fires when the incoming visit is at
least as recent as the stored one, so the statement is safe under
concurrent and reordered writes without an explicit lock.
*/
func (repository *PostgresRepository) SaveProgress(context context.Context, userID, bookID, chapterID string, visitedAt time.Time) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS p (%[2]s, %[3]s, %[4]s, %[5]s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE
		SET %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s, %[6]s = NOW()
		WHERE p.%[5]s <= EXCLUDED.%[5]s
	`,
		schema.LibraryReadingProgress.Table,
		schema.LibraryReadingProgress.UserID,
		schema.LibraryReadingProgress.BookID,
		schema.LibraryReadingProgress.ChapterID,
		schema.LibraryReadingProgress.VisitedAt,
		schema.LibraryReadingProgress.UpdatedAt,
	)

	tag, err := repository.pool.Exec(context, query, userID, bookID, chapterID, visitedAt)
	if err != nil {
		return false, dberr.Wrap(err, "Progress")
	}
	return tag.RowsAffected() == 1, nil
}

var progressSelect = fmt.Sprintf(`
	SELECT p.%s, b.%s, COALESCE(b.%s, ''), p.%s, c.%s, c.%s, p.%s, p.%s
	FROM %s p
	JOIN %s b ON b.%s = p.%s
	JOIN %s c ON c.%s = p.%s
	WHERE p.%s = $1 AND b.%s IS NULL`,
	schema.LibraryReadingProgress.BookID, schema.CoreBook.Title, schema.CoreBook.CoverURL,
	schema.LibraryReadingProgress.ChapterID, schema.CoreChapter.Title, schema.CoreChapter.SequenceNumber,
	schema.LibraryReadingProgress.VisitedAt, schema.LibraryReadingProgress.UpdatedAt,
	schema.LibraryReadingProgress.Table,
	schema.CoreBook.Table, schema.CoreBook.ID, schema.LibraryReadingProgress.BookID,
	schema.CoreChapter.Table, schema.CoreChapter.ID, schema.LibraryReadingProgress.ChapterID,
	schema.LibraryReadingProgress.UserID, schema.CoreBook.DeletedAt,
)

func scanProgress(row pgx.Row) (Progress, error) {
	var progress Progress
	err := row.Scan(&progress.BookID, &progress.BookTitle, &progress.CoverURL, &progress.ChapterID,
		&progress.ChapterTitle, &progress.SequenceNumber, &progress.VisitedAt, &progress.UpdatedAt)
	return progress, err
}

func (repository *PostgresRepository) FindProgress(context context.Context, userID, bookID string) (*Progress, error) {
	query := progressSelect + fmt.Sprintf(` AND p.%s = $2`, schema.LibraryReadingProgress.BookID)

	progress, err := scanProgress(repository.pool.QueryRow(context, query, userID, bookID))
	if err != nil {
		return nil, dberr.Wrap(err, "Progress")
	}
	return &progress, nil
}

func (repository *PostgresRepository) RecentProgress(context context.Context, userID string, limit int) ([]Progress, error) {
	query := progressSelect + fmt.Sprintf(` ORDER BY p.%s DESC LIMIT $2`, schema.LibraryReadingProgress.VisitedAt)

	rows, err := repository.pool.Query(context, query, userID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "Progress")
	}
	progress, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Progress, error) {
		return scanProgress(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Progress")
	}
	return progress, nil
}
