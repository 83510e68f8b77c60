// Copyright (c) 2026 GenrA. All rights reserved.

package genre

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genra-app/genra/internal/platform/database/schema"
	"github.com/genra-app/genra/internal/platform/dberr"
)

// PostgresRepository reads core.genre.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns every genre ordered for display.
func (repository *PostgresRepository) List(context context.Context) ([]Genre, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		ORDER BY %s ASC, %s ASC
	`,
		schema.CoreGenre.ID,
		schema.CoreGenre.Name,
		schema.CoreGenre.Slug,
		schema.CoreGenre.SortOrder,
		schema.CoreGenre.Table,
		schema.CoreGenre.SortOrder,
		schema.CoreGenre.ID,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_genres")
	}

	genres, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Genre, error) {
		var genre Genre
		err := row.Scan(&genre.ID, &genre.Name, &genre.Slug, &genre.SortOrder)
		return genre, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_genre")
	}
	return genres, nil
}
