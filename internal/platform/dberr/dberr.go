// Copyright (c) 2026 GenrA. All rights reserved.

// Package dberr maps pgx and PostgreSQL errors onto [apperr.AppError].
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/genra-app/genra/internal/platform/apperr"
)

// Wrap classifies a database error for the given resource.
//
//   - no rows            -> NotFound(resource)
//   - unique_violation   -> Conflict
//   - foreign_key / check violation -> Unprocessable
//   - anything else      -> Internal (cause kept for logs)
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(fmt.Sprintf("%s already exists", resource))
		case pgerrcode.ForeignKeyViolation:
			return apperr.Unprocessable(fmt.Sprintf("%s references a missing record", resource))
		case pgerrcode.CheckViolation:
			return apperr.Unprocessable(fmt.Sprintf("%s violates a constraint", resource))
		}
	}

	if apperr.IsAppError(err) {
		return err
	}

	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a unique_violation, optionally on a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
