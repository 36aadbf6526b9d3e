package manager

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const queryDatabaseExists = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"

// Conn is the subset of *pgxpool.Pool the manager needs.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Manager performs server-level database operations.
// Stateless and safe for concurrent use.
type Manager struct{}

// New creates a new Manager.
func New() *Manager {
	return &Manager{}
}

// Exists checks if a database exists.
func (m *Manager) Exists(ctx context.Context, conn Conn, dbName string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// Create creates a new database.
func (m *Manager) Create(ctx context.Context, conn Conn, dbName string) error {
	query := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{dbName}.Sanitize())
	if _, err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create database %q: %w", dbName, err)
	}
	return nil
}

// Ensure creates dbName unless it already exists. It reports whether the
// database was created.
func (m *Manager) Ensure(ctx context.Context, conn Conn, dbName string) (bool, error) {
	exists, err := m.Exists(ctx, conn, dbName)
	if err != nil || exists {
		return false, err
	}
	if err := m.Create(ctx, conn, dbName); err != nil {
		return false, err
	}
	return true, nil
}
