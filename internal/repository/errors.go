package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes (class 23, integrity constraint violation).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Storage outcomes exposed to the service layer. Callers branch on these
// with errors.Is instead of inspecting driver error types.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrConflict       = errors.New("integrity violation")
)

// translateError maps a driver-level failure to one of the storage
// outcomes above. Unique violations become ErrDuplicateEntry, foreign-key
// violations become ErrConflict and missing rows become ErrNotFound.
// Anything else is wrapped and propagates unclassified.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrDuplicateEntry)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrConflict)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return fmt.Errorf("%s: %w", op, err)
}
