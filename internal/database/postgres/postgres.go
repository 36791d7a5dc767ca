// Package postgres implements link persistence on top of PostgreSQL.
// The unique index on links.short_code is the authoritative uniqueness
// guard; callers treat database.ErrShortCodeExists as a retry signal.
package postgres

import (
	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	return ok && pgErr.SQLState() == uniqueViolationErrCode
}
