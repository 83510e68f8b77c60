// Copyright (c) 2026 GenrA. All rights reserved.

package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genra-app/genra/internal/platform/database/schema"
	"github.com/genra-app/genra/internal/platform/dberr"
	"github.com/genra-app/genra/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed rating store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) Find(context context.Context, userID, bookID string) (int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialBookRating.Stars, schema.SocialBookRating.Table,
		schema.SocialBookRating.UserID, schema.SocialBookRating.BookID)

	var stars int
	err := repository.pool.QueryRow(context, query, userID, bookID).Scan(&stars)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, dberr.Wrap(err, "Rating")
	}
	return stars, nil
}

func (repository *PostgresRepository) Put(context context.Context, userID, bookID string, stars int) (Aggregate, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s) VALUES ($1, $2, $3)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET %[4]s = EXCLUDED.%[4]s, %[5]s = NOW()
	`,
		schema.SocialBookRating.Table,
		schema.SocialBookRating.UserID,
		schema.SocialBookRating.BookID,
		schema.SocialBookRating.Stars,
		schema.SocialBookRating.UpdatedAt,
	)

	var aggregate Aggregate
	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, query, userID, bookID, stars); err != nil {
			return dberr.Wrap(err, "Rating")
		}
		var err error
		aggregate, err = recompute(context, tx, bookID)
		return err
	})
	return aggregate, err
}

func (repository *PostgresRepository) Delete(context context.Context, userID, bookID string) (Aggregate, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialBookRating.Table, schema.SocialBookRating.UserID, schema.SocialBookRating.BookID)

	var aggregate Aggregate
	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(context, query, userID, bookID); err != nil {
			return dberr.Wrap(err, "Rating")
		}
		var err error
		aggregate, err = recompute(context, tx, bookID)
		return err
	})
	return aggregate, err
}

// recompute rewrites core.book's rating columns from social.bookrating.
func recompute(context context.Context, tx pgx.Tx, bookID string) (Aggregate, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s b
		SET %[2]s = COALESCE(r.average, 0), %[3]s = r.total
		FROM (
			SELECT ROUND(AVG(%[4]s)::numeric, 2)::float8 AS average, COUNT(*)::int AS total
			FROM %[5]s WHERE %[6]s = $1
		) r
		WHERE b.%[7]s = $1
		RETURNING b.%[2]s, b.%[3]s
	`,
		schema.CoreBook.Table,
		schema.CoreBook.Rating,
		schema.CoreBook.RatingCount,
		schema.SocialBookRating.Stars,
		schema.SocialBookRating.Table,
		schema.SocialBookRating.BookID,
		schema.CoreBook.ID,
	)

	var aggregate Aggregate
	if err := tx.QueryRow(context, query, bookID).Scan(&aggregate.Rating, &aggregate.RatingCount); err != nil {
		return Aggregate{}, dberr.Wrap(err, "Book")
	}
	return aggregate, nil
}
