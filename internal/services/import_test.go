package services_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/univinfo/univload/internal/db"
	"github.com/univinfo/univload/internal/importer"
	"github.com/univinfo/univload/internal/logging"
	"github.com/univinfo/univload/internal/services"
	"github.com/univinfo/univload/internal/store/gormstore"
	"github.com/univinfo/univload/internal/store/pgstore"
	testhelpers "github.com/univinfo/univload/internal/testing"
	"github.com/univinfo/univload/pkg/univload"
)

func registryRow(code int, corporation string) []string {
	return []string{
		"대학", fmt.Sprint(code), fmt.Sprintf("University %d", code), "본교", "4년제",
		"0", "서울", "사립", "", corporation, "기존",
	}
}

func writeRegistry(t *testing.T, header []string, rows ...[]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "registry.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

// failingConnect fails the test if the service tries to reach PostgreSQL.
func failingConnect(t *testing.T) services.ConnectFunc {
	return func(context.Context, *univload.ConnectionConfig) (*pgxpool.Pool, error) {
		t.Fatal("connect must not be called")
		return nil, nil
	}
}

func realConnect(ctx context.Context, cfg *univload.ConnectionConfig) (*pgxpool.Pool, error) {
	return db.NewConnector(cfg, logging.NewNullLogger()).Connect(ctx)
}

func baseConfig(path string) univload.ImportConfig {
	return univload.ImportConfig{
		InputPath: path,
		Driver:    univload.DriverSQLite,
		BatchSize: univload.DefaultBatchSize,
	}
}

func TestNewImportService_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { services.NewImportService(nil, logging.NewNullLogger()) })
	assert.Panics(t, func() { services.NewImportService(realConnect, nil) })
}

func TestImport_MissingInputFile(t *testing.T) {
	svc := services.NewImportService(failingConnect(t), logging.NewNullLogger())
	cfg := baseConfig(filepath.Join(t.TempDir(), "absent.xlsx"))
	cfg.SQLitePath = filepath.Join(t.TempDir(), "univ.db")

	_, err := svc.Import(context.Background(), cfg)
	require.ErrorIs(t, err, univload.ErrFileNotFound)
	assert.Equal(t, univload.ExitInputNotFound, univload.ExitCodeForError(err))
}

func TestImport_InvalidConfig(t *testing.T) {
	svc := services.NewImportService(failingConnect(t), logging.NewNullLogger())
	cfg := baseConfig("registry.xlsx")
	cfg.BatchSize = 0

	_, err := svc.Import(context.Background(), cfg)
	assert.ErrorIs(t, err, univload.ErrInvalidConfig)
}

func TestImport_DryRunNeverConnects(t *testing.T) {
	path := writeRegistry(t, importer.RequiredColumns,
		registryRow(1001, "Test Foundation"),
		registryRow(1002, "Test Foundation"),
	)
	svc := services.NewImportService(failingConnect(t), logging.NewNullLogger())
	cfg := baseConfig(path)
	cfg.Driver = univload.DriverPostgres
	cfg.DryRun = true

	res, err := svc.Import(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.CorporationsCreated)
}

func TestImport_SQLite(t *testing.T) {
	bad := registryRow(1003, "Other Foundation")
	bad[0] = "초등학교"
	path := writeRegistry(t, importer.RequiredColumns,
		registryRow(1001, "Test Foundation"),
		registryRow(1002, "Test Foundation"),
		bad,
	)
	dbPath := filepath.Join(t.TempDir(), "univ.db")

	svc := services.NewImportService(failingConnect(t), logging.NewNullLogger())
	cfg := baseConfig(path)
	cfg.SQLitePath = dbPath

	res, err := svc.Import(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Index)
	assert.Equal(t, 4, res.Failures[0].Line)

	gdb, err := gormstore.Open(dbPath)
	require.NoError(t, err)
	defer gormstore.Close(gdb)

	unis, err := gormstore.ListUniversities(context.Background(), gdb)
	require.NoError(t, err)
	assert.Len(t, unis, 2)

	corps, err := gormstore.ListCorporations(context.Background(), gdb)
	require.NoError(t, err)
	names := make([]string, 0, len(corps))
	for _, c := range corps {
		names = append(names, c.Name)
	}
	// The bad row resolves its corporation before its enums are mapped.
	assert.ElementsMatch(t, []string{"Test Foundation", "Other Foundation"}, names)
}

func TestImport_SchemaMismatchWritesNothing(t *testing.T) {
	header := append([]string(nil), importer.RequiredColumns[:len(importer.RequiredColumns)-1]...)
	row := registryRow(1001, "Test Foundation")
	path := writeRegistry(t, header, row[:len(header)])
	dbPath := filepath.Join(t.TempDir(), "univ.db")

	svc := services.NewImportService(failingConnect(t), logging.NewNullLogger())
	cfg := baseConfig(path)
	cfg.SQLitePath = dbPath

	_, err := svc.Import(context.Background(), cfg)
	require.ErrorIs(t, err, univload.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), importer.ColStatus)

	gdb, err := gormstore.Open(dbPath)
	require.NoError(t, err)
	defer gormstore.Close(gdb)
	corps, err := gormstore.ListCorporations(context.Background(), gdb)
	require.NoError(t, err)
	assert.Empty(t, corps)
}

func TestImport_Postgres(t *testing.T) {
	pool, connString := testhelpers.NewTestDatabase(t)
	path := writeRegistry(t, importer.RequiredColumns,
		registryRow(1001, "Test Foundation"),
		registryRow(1002, "Test Foundation"),
		registryRow(1001, "Test Foundation"),
	)

	svc := services.NewImportService(realConnect, logging.NewNullLogger())
	cfg := baseConfig(path)
	cfg.Driver = univload.DriverPostgres
	cfg.ConnectionString = connString

	res, err := svc.Import(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Index)

	corps, err := pgstore.ListCorporations(context.Background(), pool)
	require.NoError(t, err)
	require.Len(t, corps, 1)
	assert.Equal(t, "Test Foundation", corps[0].Name)

	// Running again applies no migrations and rejects every code as a duplicate.
	res, err = svc.Import(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Len(t, res.Failures, 3)
}

func TestImport_PostgresCreatesDatabase(t *testing.T) {
	serverConn := testhelpers.RequireDatabase(t)
	ctx := context.Background()

	server, err := db.ParseConnectionString(serverConn)
	require.NoError(t, err)
	target := *server
	target.Database = "univload_create_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	t.Cleanup(func() {
		admin, err := pgxpool.New(ctx, serverConn)
		if err != nil {
			t.Logf("Warning: cleanup connect failed: %v", err)
			return
		}
		defer admin.Close()
		_, _ = admin.Exec(ctx, `SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1`, target.Database)
		_, _ = admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{target.Database}.Sanitize())
	})

	path := writeRegistry(t, importer.RequiredColumns, registryRow(1001, "Test Foundation"))
	svc := services.NewImportService(realConnect, logging.NewNullLogger())
	cfg := baseConfig(path)
	cfg.Driver = univload.DriverPostgres
	cfg.ConnectionString = db.BuildConnectionString(&target)
	cfg.CreateDatabase = true
	cfg.MaintenanceDatabase = server.Database

	res, err := svc.Import(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
}
