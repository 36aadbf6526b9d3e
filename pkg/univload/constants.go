package univload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
//
// An import that finishes with some failed rows still exits with ExitSuccess:
// partial success is the expected outcome of a best-effort load.
const (
	ExitSuccess         = 0  // Import completed (possibly with row failures)
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitSchemaMismatch  = 12 // Required spreadsheet column missing
	ExitInputNotFound   = 13 // Input spreadsheet not found
	ExitMigrationFailed = 14 // Schema migration failed
)

const (
	// DefaultBatchSize is the number of rows between checkpoint commits.
	DefaultBatchSize = 100

	// DefaultTimeout bounds a whole run. Protects against hung connections,
	// not slow imports.
	DefaultTimeout = 10 * time.Minute

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultHost, DefaultPort, DefaultUser and DefaultDatabase are used when
	// no flag, environment variable or config file provides a value.
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultUser     = "postgres"
	DefaultDatabase = "univ_info"
	DefaultSSLMode  = "prefer"

	// DefaultManagementDB is the database used for CREATE DATABASE.
	DefaultManagementDB = "postgres"

	// MaxSummaryFailures limits how many row failures the summary prints.
	MaxSummaryFailures = 20
)
