// Package migrate applies the embedded PostgreSQL schema migrations with goose.
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/univinfo/univload/pkg/univload"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Applied describes one migration run by Up.
type Applied struct {
	Version  int64
	Path     string
	Duration time.Duration
}

// Status describes one known migration.
type Status struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Migrator runs goose against a pgx pool.
type Migrator struct {
	provider *goose.Provider
	logger   univload.Logger
}

// New prepares a Migrator over a database/sql view of pool.
func New(pool *pgxpool.Pool, logger univload.Logger) (*Migrator, error) {
	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load migrations: %v: %w", err, univload.ErrMigrationFailed)
	}
	return &Migrator{provider: provider, logger: logger}, nil
}

// Up applies every pending migration. It is a no-op when the schema is current.
func (m *Migrator) Up(ctx context.Context) ([]Applied, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w: %w", err, univload.ErrMigrationFailed)
	}

	applied := make([]Applied, 0, len(results))
	for _, r := range results {
		m.logger.Info("applied migration %s in %s", r.Source.Path, r.Duration.Round(time.Millisecond))
		applied = append(applied, Applied{Version: r.Source.Version, Path: r.Source.Path, Duration: r.Duration})
	}
	if len(applied) == 0 {
		m.logger.Verbose("schema is up to date")
	}
	return applied, nil
}

// Status lists every embedded migration and whether it has been applied.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w: %w", err, univload.ErrMigrationFailed)
	}
	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Status{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}

// Close releases the database/sql handle. The pool stays open.
func (m *Migrator) Close() error {
	return m.provider.Close()
}
