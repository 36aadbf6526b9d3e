package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/univinfo/univload/internal/db"
	"github.com/univinfo/univload/internal/db/manager"
	"github.com/univinfo/univload/internal/importer"
	"github.com/univinfo/univload/internal/migrate"
	"github.com/univinfo/univload/internal/sheet"
	"github.com/univinfo/univload/internal/store/gormstore"
	"github.com/univinfo/univload/internal/store/memstore"
	"github.com/univinfo/univload/internal/store/pgstore"
	"github.com/univinfo/univload/pkg/univload"
)

// ConnectFunc opens a verified pool for cfg.
type ConnectFunc func(ctx context.Context, cfg *univload.ConnectionConfig) (*pgxpool.Pool, error)

// ImportService runs one spreadsheet import end to end: input checks,
// optional database creation, migrations, and the row loop.
// Not safe for concurrent Import calls on the same instance.
type ImportService struct {
	connect   ConnectFunc
	dbManager *manager.Manager
	logger    univload.Logger
}

// NewImportService creates an ImportService. Panics on nil dependencies.
func NewImportService(connect ConnectFunc, logger univload.Logger) *ImportService {
	if connect == nil {
		panic("connect cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ImportService{connect: connect, dbManager: manager.New(), logger: logger}
}

// Import loads cfg.InputPath into the backend cfg selects. Row failures are
// reported in the result; only fatal conditions return an error.
func (s *ImportService) Import(ctx context.Context, cfg univload.ImportConfig) (*importer.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.InputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input file %s does not exist: %w", cfg.InputPath, univload.ErrFileNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", cfg.InputPath, err)
	}

	table, err := sheet.Read(cfg.InputPath, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("read %d rows from %s", table.Len(), cfg.InputPath)

	imp, err := importer.New(importer.WithBatchSize(cfg.BatchSize), importer.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	sess, release, err := s.openSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := imp.Import(ctx, table, sess)
	if closeErr := sess.Close(context.WithoutCancel(ctx)); closeErr != nil {
		s.logger.Warn("closing session: %v", closeErr)
	}
	return result, err
}

func (s *ImportService) openSession(ctx context.Context, cfg univload.ImportConfig) (importer.Session, func(), error) {
	if cfg.DryRun {
		s.logger.Info("dry run: rows are validated against an in-memory store, nothing is written")
		return memstore.New(), func() {}, nil
	}

	switch cfg.Driver {
	case univload.DriverSQLite:
		gdb, err := gormstore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.SkipMigrations {
			s.logger.Verbose("--skip-migrate has no effect on sqlite: tables are always auto-migrated")
		}
		release := func() {
			if err := gormstore.Close(gdb); err != nil {
				s.logger.Warn("closing sqlite database: %v", err)
			}
		}
		return gormstore.NewSession(gdb), release, nil

	default:
		pool, err := s.preparePostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewSession(pool), pool.Close, nil
	}
}

// preparePostgres connects to the target database, creating it first when
// asked, and applies pending migrations unless they are skipped.
func (s *ImportService) preparePostgres(ctx context.Context, cfg univload.ImportConfig) (*pgxpool.Pool, error) {
	connConfig, err := db.ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %v: %w", err, univload.ErrInvalidConfig)
	}

	if cfg.CreateDatabase {
		if err := s.ensureDatabase(ctx, connConfig, cfg.MaintenanceDatabase); err != nil {
			return nil, err
		}
	}

	pool, err := s.connect(ctx, connConfig)
	if err != nil {
		return nil, err
	}

	if cfg.SkipMigrations {
		s.logger.Verbose("skipping migrations")
		return pool, nil
	}
	if _, err := ApplyMigrations(ctx, pool, s.logger); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *ImportService) ensureDatabase(ctx context.Context, connConfig *univload.ConnectionConfig, maintenanceDB string) error {
	if maintenanceDB == "" {
		maintenanceDB = univload.DefaultManagementDB
	}
	mgmt := *connConfig
	mgmt.Database = maintenanceDB

	pool, err := s.connect(ctx, &mgmt)
	if err != nil {
		return fmt.Errorf("failed to connect to management database: %w", err)
	}
	defer pool.Close()

	created, err := s.dbManager.Ensure(ctx, pool, connConfig.Database)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("created database %q", connConfig.Database)
	} else {
		s.logger.Verbose("database %q already exists", connConfig.Database)
	}
	return nil
}

// ApplyMigrations runs every pending migration against pool.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, logger univload.Logger) ([]migrate.Applied, error) {
	m, err := migrate.New(pool, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("closing migrator: %v", err)
		}
	}()
	return m.Up(ctx)
}

// MigrationStatus lists the embedded migrations and their state in pool.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool, logger univload.Logger) ([]migrate.Status, error) {
	m, err := migrate.New(pool, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("closing migrator: %v", err)
		}
	}()
	return m.Status(ctx)
}
