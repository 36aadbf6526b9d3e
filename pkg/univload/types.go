package univload

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Driver selects the database backend an import writes to.
type Driver string

const (
	DriverPostgres Driver = "postgres" // PostgreSQL through pgx, schema via goose migrations
	DriverSQLite   Driver = "sqlite"   // Local SQLite file through GORM
)

// ParseDriver returns the Driver named by s (case-insensitive).
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unknown driver %q (want postgres or sqlite): %w", s, ErrInvalidConfig)
	}
}

// ImportConfig contains all parameters needed for one import run.
type ImportConfig struct {
	// InputPath is the spreadsheet to load.
	InputPath string

	// SheetName selects a worksheet; empty means the workbook's active sheet.
	SheetName string

	// Driver selects the backend.
	Driver Driver

	// ConnectionString is the PostgreSQL connection string (DriverPostgres).
	ConnectionString string

	// MaintenanceDatabase is the database connected to for CREATE DATABASE.
	MaintenanceDatabase string

	// SQLitePath is the database file (DriverSQLite).
	SQLitePath string

	// BatchSize is the number of rows between checkpoint commits.
	BatchSize int

	// SkipMigrations skips applying pending migrations before the import.
	SkipMigrations bool

	// CreateDatabase creates the target PostgreSQL database if it is missing.
	CreateDatabase bool

	// DryRun maps every row against an in-memory session and writes nothing.
	DryRun bool

	// Timeout is the global timeout for the whole run.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the ImportConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ImportConfig) Validate() error {
	var errs []error

	if c.InputPath == "" {
		errs = append(errs, fmt.Errorf("InputPath is required: %w", ErrInvalidConfig))
	}

	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch size must be at least 1, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if !c.DryRun {
		switch c.Driver {
		case DriverPostgres:
			if c.ConnectionString == "" {
				errs = append(errs, fmt.Errorf("ConnectionString is required for the postgres driver: %w", ErrInvalidConfig))
			}
		case DriverSQLite:
			if c.SQLitePath == "" {
				errs = append(errs, fmt.Errorf("SQLitePath is required for the sqlite driver: %w", ErrInvalidConfig))
			}
			if c.CreateDatabase {
				errs = append(errs, fmt.Errorf("--create-db only applies to the postgres driver: %w", ErrInvalidConfig))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown driver %q: %w", c.Driver, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string
}

// Redacted returns a copy safe for logging.
func (c ConnectionConfig) Redacted() ConnectionConfig {
	if c.Password != "" {
		c.Password = "xxxxx"
	}
	return c
}
