// Copyright (c) 2026 GenrA. All rights reserved.

package book

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genra-app/genra/internal/platform/database/schema"
	"github.com/genra-app/genra/internal/platform/dberr"
	"github.com/genra-app/genra/internal/platform/postgres"
)

// # PostgreSQL Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed book store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// bookColumns selects a hydrated book. Genres are aggregated into JSON to
// avoid one query per row.
var bookColumns = fmt.Sprintf(`
	b.%s, b.%s, b.%s, COALESCE(a.%s, ''), COALESCE(b.%s, ''), b.%s,
	b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
	COALESCE((
		SELECT json_agg(json_build_object('id', g.%s, 'name', g.%s, 'slug', g.%s) ORDER BY g.%s)
		FROM %s g
		JOIN %s bg ON bg.%s = g.%s
		WHERE bg.%s = b.%s
	), '[]') AS genres`,
	schema.CoreBook.ID, schema.CoreBook.Title, schema.CoreBook.AuthorID,
	schema.UserAccount.DisplayName, schema.CoreBook.CoverURL, schema.CoreBook.Description,
	schema.CoreBook.Status, schema.CoreBook.Price, schema.CoreBook.ViewCount,
	schema.CoreBook.Rating, schema.CoreBook.RatingCount, schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
	schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug, schema.CoreGenre.SortOrder,
	schema.CoreGenre.Table,
	schema.CoreBookGenre.Table, schema.CoreBookGenre.GenreID, schema.CoreGenre.ID,
	schema.CoreBookGenre.BookID, schema.CoreBook.ID,
)

var bookFrom = fmt.Sprintf(`%s b JOIN %s a ON a.%s = b.%s`,
	schema.CoreBook.Table, schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreBook.AuthorID)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanBook(row pgx.Row, extra ...any) (*Book, error) {
	book := &Book{}
	var genresJSON []byte
	targets := []any{
		&book.ID, &book.Title, &book.AuthorID, &book.AuthorName, &book.CoverURL, &book.Description,
		&book.Status, &book.Price, &book.ViewsCount, &book.Rating, &book.RatingCount,
		&book.CreatedAt, &book.UpdatedAt, &genresJSON,
	}
	if err := row.Scan(append(targets, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(genresJSON, &book.Genres); err != nil {
		return nil, fmt.Errorf("postgres_book_genres_decode_failed: %w", err)
	}
	if book.Genres == nil {
		book.Genres = []GenreRef{}
	}
	return book, nil
}

/*
List returns a filtered page of books and the total match count.

Description: Search combines websearch_to_tsquery over the weighted title and
description vector with an ILIKE fallback on the title, so partial words
still match. The total is computed with COUNT(*) OVER().
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE b.%s IS NULL`,
		bookColumns, bookFrom, schema.CoreBook.DeletedAt))

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for index, status := range filter.Statuses {
			statuses[index] = string(status)
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = ANY($%d)", schema.CoreBook.Status, argID))
		args = append(args, statuses)
		argID++
	}

	if filter.AuthorID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CoreBook.AuthorID, argID))
		args = append(args, filter.AuthorID)
		argID++
	}

	if filter.Genre != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s bg JOIN %s g ON g.%s = bg.%s
			WHERE bg.%s = b.%s AND g.%s = $%d)`,
			schema.CoreBookGenre.Table, schema.CoreGenre.Table, schema.CoreGenre.ID, schema.CoreBookGenre.GenreID,
			schema.CoreBookGenre.BookID, schema.CoreBook.ID, schema.CoreGenre.Slug, argID))
		args = append(args, filter.Genre)
		argID++
	}

	if len(filter.GenreIDs) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s bg WHERE bg.%s = b.%s AND bg.%s = ANY($%d::int[]))`,
			schema.CoreBookGenre.Table, schema.CoreBookGenre.BookID, schema.CoreBook.ID,
			schema.CoreBookGenre.GenreID, argID))
		args = append(args, filter.GenreIDs)
		argID++
	}

	queryArg := 0
	if filter.Query != "" {
		queryArg = argID
		queryBuilder.WriteString(fmt.Sprintf(
			` AND (b.%s @@ websearch_to_tsquery('simple', $%d) OR b.%s ILIKE $%d ESCAPE '\')`,
			schema.CoreBook.SearchVector, argID, schema.CoreBook.Title, argID+1))
		args = append(args, filter.Query, "%"+likeEscaper.Replace(filter.Query)+"%")
		argID += 2
	}

	sort := fmt.Sprintf("b.%s DESC", schema.CoreBook.CreatedAt)
	switch {
	case filter.Sort == SortRating:
		sort = fmt.Sprintf("b.%s DESC, b.%s DESC", schema.CoreBook.Rating, schema.CoreBook.RatingCount)
	case filter.Sort == SortViews:
		sort = fmt.Sprintf("b.%s DESC", schema.CoreBook.ViewCount)
	case filter.Sort == "" && queryArg > 0:
		sort = fmt.Sprintf("ts_rank(b.%s, websearch_to_tsquery('simple', $%d)) DESC", schema.CoreBook.SearchVector, queryArg)
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s, b.%s DESC", sort, schema.CoreBook.ID))

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_book_list_failed: %w", err)
	}
	defer rows.Close()

	var books []*Book
	var total int
	for rows.Next() {
		book, err := scanBook(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_book_scan_failed: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_book_list_failed: %w", err)
	}
	return books, total, nil
}

// FindByID returns a book in any status; soft-deleted books are not found.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE b.%s = $1 AND b.%s IS NULL`,
		bookColumns, bookFrom, schema.CoreBook.ID, schema.CoreBook.DeletedAt)

	book, err := scanBook(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Book")
	}
	return book, nil
}

// InterestGenreIDs lists the genres userID follows.
func (repository *PostgresRepository) InterestGenreIDs(context context.Context, userID string) ([]int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.UserInterest.GenreID, schema.UserInterest.Table, schema.UserInterest.UserID)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Interest")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, dberr.Wrap(err, "Interest")
	}
	return ids, nil
}

// IncrementViews adds exactly one view in a single statement and returns the new count.
func (repository *PostgresRepository) IncrementViews(context context.Context, id string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = %s + 1
		WHERE %s = $1 AND %s = $2 AND %s IS NULL
		RETURNING %s
	`,
		schema.CoreBook.Table, schema.CoreBook.ViewCount, schema.CoreBook.ViewCount,
		schema.CoreBook.ID, schema.CoreBook.Status, schema.CoreBook.DeletedAt,
		schema.CoreBook.ViewCount,
	)

	var views int64
	if err := repository.pool.QueryRow(context, query, id, string(StatusApproved)).Scan(&views); err != nil {
		return 0, dberr.Wrap(err, "Book")
	}
	return views, nil
}

// Create inserts the book and its genre links in one transaction.
func (repository *PostgresRepository) Create(context context.Context, book *Book, genreIDs []int) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`,
		schema.CoreBook.Table,
		schema.CoreBook.ID, schema.CoreBook.AuthorID, schema.CoreBook.Title, schema.CoreBook.Description,
		schema.CoreBook.CoverURL, schema.CoreBook.Status, schema.CoreBook.Price,
	)

	return postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, query,
			book.ID, book.AuthorID, book.Title, book.Description, book.CoverURL, string(book.Status), book.Price,
		); err != nil {
			return dberr.Wrap(err, "Book")
		}
		return replaceGenres(context, tx, book.ID, genreIDs)
	})
}

// Update applies the non-nil fields of changes. Genres are replaced wholesale.
func (repository *PostgresRepository) Update(context context.Context, id string, changes Changes) error {
	var setBuilder strings.Builder
	args := []any{id}
	argID := 2

	set := func(column string, value any, expression string) {
		setBuilder.WriteString(fmt.Sprintf(", %s = "+expression, column, argID))
		args = append(args, value)
		argID++
	}
	if changes.Title != nil {
		set(schema.CoreBook.Title, *changes.Title, "$%d")
	}
	if changes.Description != nil {
		set(schema.CoreBook.Description, *changes.Description, "$%d")
	}
	if changes.CoverURL != nil {
		set(schema.CoreBook.CoverURL, *changes.CoverURL, "NULLIF($%d, '')")
	}
	if changes.Price != nil {
		set(schema.CoreBook.Price, *changes.Price, "$%d")
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = NOW()%s WHERE %s = $1 AND %s IS NULL`,
		schema.CoreBook.Table, schema.CoreBook.UpdatedAt, setBuilder.String(),
		schema.CoreBook.ID, schema.CoreBook.DeletedAt)

	return postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, query, args...)
		if err != nil {
			return dberr.Wrap(err, "Book")
		}
		if tag.RowsAffected() == 0 {
			return dberr.Wrap(pgx.ErrNoRows, "Book")
		}
		if changes.GenreIDs == nil {
			return nil
		}
		return replaceGenres(context, tx, id, changes.GenreIDs)
	})
}

// TransitionStatus performs a guarded status change.
func (repository *PostgresRepository) TransitionStatus(context context.Context, id string, from []Status, to Status) (bool, error) {
	allowed := make([]string, len(from))
	for index, status := range from {
		allowed[index] = string(status)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW()
		WHERE %s = $1 AND %s = ANY($3) AND %s IS NULL
	`,
		schema.CoreBook.Table, schema.CoreBook.Status, schema.CoreBook.UpdatedAt,
		schema.CoreBook.ID, schema.CoreBook.Status, schema.CoreBook.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, id, string(to), allowed)
	if err != nil {
		return false, dberr.Wrap(err, "Book")
	}
	return tag.RowsAffected() == 1, nil
}

func replaceGenres(context context.Context, tx pgx.Tx, bookID string, genreIDs []int) error {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreBookGenre.Table, schema.CoreBookGenre.BookID)
	if _, err := tx.Exec(context, deleteQuery, bookID); err != nil {
		return dberr.Wrap(err, "Genre")
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, unnest($2::int[])`,
		schema.CoreBookGenre.Table, schema.CoreBookGenre.BookID, schema.CoreBookGenre.GenreID)
	if _, err := tx.Exec(context, insertQuery, bookID, genreIDs); err != nil {
		return dberr.Wrap(err, "Genre")
	}
	return nil
}
