// Package repositories holds the PostgreSQL repositories of the server and
// the error translation they share.
package repositories

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBError wraps err as a "db error", translating constraint violations to
// common.ErrAlreadyExists and common.ErrReferenced.
func DBError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("db error: %w: %s", common.ErrAlreadyExists, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("db error: %w: %s", common.ErrReferenced, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("db error: %w", err)
}
