package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories classify
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return hasPgCode(err, pgUniqueViolation)
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	return hasPgCode(err, pgForeignKeyViolation)
}

// IsPgInvalidInputError reports a malformed literal, e.g. a non-UUID id
func IsPgInvalidInputError(err error) bool {
	return hasPgCode(err, pgInvalidTextRep)
}

// PgConstraintName returns the violated constraint, or "" for other errors
func PgConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
