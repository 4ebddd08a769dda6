package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/phrazzld/coban-api/internal/store"
)

// mapError maps a database error from operation op to a store error.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrScoreNotFound, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return store.NewStoreError(store.EntityUserScore, op,
			fmt.Sprintf("constraint violation (%s)", sqliteErr.ExtendedCode.Error()),
			store.InvalidEntity(err))
	}

	return store.Unavailable(store.EntityUserScore, op, err)
}
