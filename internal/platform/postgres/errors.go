package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/coban-api/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	invalidJSONTextCode     = "22P02"
)

// MapError maps a database error from operation op to a store error.
// Missing rows become store.ErrScoreNotFound, constraint violations become
// store.ErrInvalidEntity and everything else is reported as
// store.ErrStorageUnavailable. The original error stays in the chain.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrScoreNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode, foreignKeyViolationCode, checkViolationCode:
			return store.NewStoreError(store.EntityUserScore, op,
				fmt.Sprintf("constraint violation (%s)", pgErr.ConstraintName),
				store.InvalidEntity(err))
		case notNullViolationCode:
			return store.NewStoreError(store.EntityUserScore, op,
				fmt.Sprintf("not null violation (%s)", pgErr.ColumnName),
				store.InvalidEntity(err))
		case invalidJSONTextCode:
			return store.NewStoreError(store.EntityUserScore, op,
				"invalid score document", store.InvalidEntity(err))
		}
	}

	return store.Unavailable(store.EntityUserScore, op, err)
}

// IsConstraintViolation reports whether err is a PostgreSQL integrity
// constraint violation.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case uniqueViolationCode, foreignKeyViolationCode, checkViolationCode, notNullViolationCode:
		return true
	}
	return false
}
