package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUndefinedTable = "42P01"

// IsUndefinedTable reports whether the error means a relation does not exist.
// The authorization resolver uses this to detect an unprovisioned profiles
// table and fall back to the token role claim.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	// SQLite in tests reports the same condition as plain text.
	return strings.Contains(err.Error(), "no such table")
}

// IsUniqueViolation reports whether the error references a unique constraint,
// optionally matching a specific constraint name.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
