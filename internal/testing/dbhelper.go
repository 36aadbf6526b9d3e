// Package testing holds helpers for integration tests that need a real
// PostgreSQL server.
package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/univinfo/univload/internal/db"
	"github.com/univinfo/univload/internal/db/manager"
	"github.com/univinfo/univload/internal/testinfra"
)

// TestConnEnv names the variable that points tests at an existing server
// instead of starting a container.
const TestConnEnv = "UNIVLOAD_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test server connection string.
// Priority: UNIVLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnv); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestDatabase creates an empty, uniquely named database and drops it
// when the test ends. It returns a pool on that database and its
// connection string.
func NewTestDatabase(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	serverConn := RequireDatabase(t)
	ctx := context.Background()
	name := "univload_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	admin, err := pgxpool.New(ctx, serverConn)
	if err != nil {
		t.Fatalf("connect to test server: %v", err)
	}
	if err := manager.New().Create(ctx, admin, name); err != nil {
		admin.Close()
		t.Fatalf("create test database: %v", err)
	}

	cfg, err := db.ParseConnectionString(serverConn)
	if err != nil {
		admin.Close()
		t.Fatalf("parse test connection string: %v", err)
	}
	cfg.Database = name
	connString := db.BuildConnectionString(cfg)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		admin.Close()
		t.Fatalf("connect to test database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		dropDatabase(t, admin, name)
		admin.Close()
	})
	return pool, connString
}

func dropDatabase(t *testing.T, admin *pgxpool.Pool, name string) {
	ctx := context.Background()
	_, err := admin.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`, name)
	if err != nil {
		t.Logf("Warning: failed to terminate connections to %s: %v", name, err)
	}
	if _, err := admin.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{name}.Sanitize())); err != nil {
		t.Logf("Warning: failed to drop test database %s: %v", name, err)
	}
}
