package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/univinfo/univload/internal/config"
	"github.com/univinfo/univload/internal/db"
	"github.com/univinfo/univload/internal/logging"
	"github.com/univinfo/univload/internal/services"
	"github.com/univinfo/univload/pkg/univload"
)

// commandEnv is what every command loads before doing any work.
type commandEnv struct {
	env     *config.Env
	project *config.ProjectConfig
	logger  *logging.ConsoleLogger
	runID   uuid.UUID
	verbose bool
}

// loadCommandEnv loads .env, the environment, the project config and
// builds the run's logger.
func loadCommandEnv(cmd *cobra.Command) (*commandEnv, error) {
	env, err := config.LoadEnv(".env")
	if err != nil {
		return nil, err
	}

	project, err := loadProjectConfig(getStringFlag(cmd, "config"))
	if err != nil {
		return nil, err
	}

	verbose := getVerboseFlag(cmd)
	logger, err := buildLogger(cmd, env, project, verbose)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	return &commandEnv{
		env:     env,
		project: project,
		logger:  logger.WithRunID(runID),
		runID:   runID,
		verbose: verbose,
	}, nil
}

// loadProjectConfig loads the project configuration.
// Returns nil config if ./univload.yaml does not exist (not an error); an
// explicit --config path must exist.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("config file %s does not exist: %w", path, univload.ErrInvalidConfig)
		}
		return cfg, err
	}

	cfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

// buildLogger applies flag > environment > univload.yaml for format and level.
func buildLogger(cmd *cobra.Command, env *config.Env, project *config.ProjectConfig, verbose bool) (*logging.ConsoleLogger, error) {
	var fileLog config.LogConfig
	if project != nil {
		fileLog = project.Log
	}

	var opts []logging.Option
	format := firstSet(getStringFlag(cmd, "log-format"), env.LogFormat, fileLog.Format)
	jsonOutput, err := logging.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, univload.ErrInvalidConfig)
	}
	if jsonOutput {
		opts = append(opts, logging.WithJSON())
	}

	if level := firstSet(getStringFlag(cmd, "log-level"), env.LogLevel, fileLog.Level); level != "" && !verbose {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, univload.ErrInvalidConfig)
		}
		opts = append(opts, logging.WithLevel(parsed))
	}

	return logging.NewConsoleLogger(verbose, opts...), nil
}

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection string
	host       string
	port       int
	username   string
	database   string
	sslMode    string
}

// registerConnectionFlags adds the PostgreSQL standard connection flags.
func registerConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username, --sslmode).\n"+
			"Alternative: DATABASE_URL environment variable.\n"+
			"Example: postgresql://user@localhost:5432/univ_info")
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > univload.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > univload.yaml > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER, univload.yaml, or postgres)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Target database name (default: $PGDATABASE, univload.yaml, or univ_info)\n"+
			"Overrides the database of --connection when both are given")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
}

// resolvedConnection holds the resolved connection configuration.
type resolvedConnection struct {
	ConnConfig    *univload.ConnectionConfig
	MaintenanceDB string
	ConnStr       string
}

// resolveConnectionFromFlags resolves connection configuration from flags,
// environment and project config.
func resolveConnectionFromFlags(flags connectionFlags, ce *commandEnv) (*resolvedConnection, error) {
	granular := &db.ConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	connConfig, maintenanceDB, err := db.Resolve(flags.connection, granular, ce.env, ce.project)
	if err != nil {
		return nil, err
	}

	redacted := connConfig.Redacted()
	ce.logger.Verbose("connection resolved: host=%s port=%d user=%s database=%s maintenance=%s sslmode=%s",
		redacted.Host, redacted.Port, redacted.Username, redacted.Database, maintenanceDB, redacted.SSLMode)

	return &resolvedConnection{
		ConnConfig:    connConfig,
		MaintenanceDB: maintenanceDB,
		ConnStr:       db.BuildConnectionString(connConfig),
	}, nil
}

// resolveEffectiveTimeout returns the effective timeout, preferring the
// environment and then univload.yaml if the flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, ce *commandEnv, flagTimeout time.Duration) (time.Duration, error) {
	if cmd.Flags().Changed("timeout") {
		return flagTimeout, nil
	}
	if ce.env.Timeout > 0 {
		return ce.env.Timeout, nil
	}
	fromFile, err := ce.project.TimeoutDuration()
	if err != nil {
		return 0, err
	}
	if fromFile > 0 {
		return fromFile, nil
	}
	return flagTimeout, nil
}

// signalContext returns a context bounded by timeout and cancelled on
// Ctrl+C or SIGTERM.
func signalContext(timeout time.Duration, what string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling %s...\n", what)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// connectPostgres opens a verified pool with the retrying connector.
func connectPostgres(logger univload.Logger) services.ConnectFunc {
	return func(ctx context.Context, cfg *univload.ConnectionConfig) (*pgxpool.Pool, error) {
		return db.NewConnector(cfg, logger).Connect(ctx)
	}
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (ce *commandEnv) projectImport() config.ImportConfig {
	if ce.project == nil {
		return config.ImportConfig{}
	}
	return ce.project.Import
}
