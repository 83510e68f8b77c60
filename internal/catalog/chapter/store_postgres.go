// Copyright (c) 2026 GenrA. All rights reserved.

package chapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/database/schema"
	"github.com/genra-app/genra/internal/platform/dberr"
)

const sequenceConstraint = "chapter_book_sequence_key"

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed chapter store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func sequenceTaken(err error) error {
	if dberr.IsUniqueViolation(err, sequenceConstraint) {
		return apperr.Conflict("A chapter with this sequence number already exists")
	}
	return dberr.Wrap(err, "Chapter")
}

// ListByBook returns the table of contents; content is not selected.
func (repository *PostgresRepository) ListByBook(context context.Context, bookID string) ([]*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s ASC
	`,
		schema.CoreChapter.ID, schema.CoreChapter.BookID, schema.CoreChapter.Title,
		schema.CoreChapter.SequenceNumber, schema.CoreChapter.IsLocked,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.Table,
		schema.CoreChapter.BookID, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.SequenceNumber,
	)

	rows, err := repository.pool.Query(context, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}

	chapters, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Chapter, error) {
		chapter := &Chapter{}
		err := row.Scan(&chapter.ID, &chapter.BookID, &chapter.Title, &chapter.SequenceNumber,
			&chapter.IsLocked, &chapter.CreatedAt, &chapter.UpdatedAt)
		return chapter, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return chapters, nil
}

// FindByID returns one chapter with content.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.CoreChapter.ID, schema.CoreChapter.BookID, schema.CoreChapter.Title, schema.CoreChapter.Content,
		schema.CoreChapter.SequenceNumber, schema.CoreChapter.IsLocked,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	chapter := &Chapter{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&chapter.ID, &chapter.BookID, &chapter.Title, &chapter.Content,
		&chapter.SequenceNumber, &chapter.IsLocked, &chapter.CreatedAt, &chapter.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return chapter, nil
}

// Create inserts a chapter; a reused sequence number yields Conflict.
func (repository *PostgresRepository) Create(context context.Context, chapter *Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.BookID, schema.CoreChapter.Title,
		schema.CoreChapter.Content, schema.CoreChapter.SequenceNumber, schema.CoreChapter.IsLocked,
	)

	_, err := repository.pool.Exec(context, query,
		chapter.ID, chapter.BookID, chapter.Title, chapter.Content, chapter.SequenceNumber, chapter.IsLocked)
	if err != nil {
		return sequenceTaken(err)
	}
	return nil
}

// Update applies the non-nil fields of changes.
func (repository *PostgresRepository) Update(context context.Context, id string, changes Changes) error {
	var setBuilder strings.Builder
	args := []any{id}
	argID := 2

	set := func(column string, value any) {
		setBuilder.WriteString(fmt.Sprintf(", %s = $%d", column, argID))
		args = append(args, value)
		argID++
	}
	if changes.Title != nil {
		set(schema.CoreChapter.Title, *changes.Title)
	}
	if changes.Content != nil {
		set(schema.CoreChapter.Content, *changes.Content)
	}
	if changes.SequenceNumber != nil {
		set(schema.CoreChapter.SequenceNumber, *changes.SequenceNumber)
	}
	if changes.IsLocked != nil {
		set(schema.CoreChapter.IsLocked, *changes.IsLocked)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = NOW()%s WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.Table, schema.CoreChapter.UpdatedAt, setBuilder.String(),
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt)

	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return sequenceTaken(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}
	return nil
}

// SoftDelete marks the chapter deleted.
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.Table, schema.CoreChapter.DeletedAt, schema.CoreChapter.ID, schema.CoreChapter.DeletedAt)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chapter")
	}
	return nil
}
