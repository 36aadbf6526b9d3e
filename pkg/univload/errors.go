package univload

import (
	"errors"
	"strings"
)

// Sentinel errors for the fatal failure classes of a run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	res, err := imp.Import(ctx, table, session)
//	if errors.Is(err, univload.ErrSchemaMismatch) {
//	    // spreadsheet header is missing required columns
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the database could not be reached.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSchemaMismatch indicates the input is missing a required column.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrFileNotFound indicates the input spreadsheet does not exist.
	ErrFileNotFound = errors.New("input file not found")

	// ErrMigrationFailed indicates applying schema migrations failed.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrUsage indicates the command line itself is wrong (missing
	// arguments, unknown flags).
	ErrUsage = errors.New("usage error")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrSchemaMismatch):
		return ExitSchemaMismatch
	case errors.Is(err, ErrFileNotFound):
		return ExitInputNotFound
	case errors.Is(err, ErrMigrationFailed):
		return ExitMigrationFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
