package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/univinfo/univload/internal/retry"
	"github.com/univinfo/univload/pkg/univload"
)

// Pool settings. An import uses a single connection at a time; the second
// one serves migrations and the corporations listing.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 5 * time.Minute
)

// Connector opens pgx pools with automatic retry on transient failures.
type Connector struct {
	config   *univload.ConnectionConfig
	executor *retry.Executor
	logger   univload.Logger
}

// NewConnector creates a Connector. Retry behavior uses univload defaults:
// DefaultRetryMaxAttempts retries, exponential backoff starting at
// DefaultRetryInitialDelay, capped at DefaultRetryMaxDelay.
func NewConnector(config *univload.ConnectionConfig, logger univload.Logger) *Connector {
	strategy := retry.NewExponentialBackoff(univload.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(univload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(univload.DefaultRetryMaxDelay),
	)
	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("connection attempt %d failed, retrying in %s: %v", attempt+1, delay.Round(time.Millisecond), err)
		})

	return &Connector{config: config, executor: executor, logger: logger}
}

// Connect establishes a connection pool and verifies it with a ping.
// Failures wrap univload.ErrConnectionFailed.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(c.config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %v: %w", err, univload.ErrInvalidConfig)
	}
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		c.logger.Verbose("postgres %s: %s", strings.ToLower(notice.Severity), notice.Message)
	}

	c.logger.Verbose("connecting to %s:%d/%s as %s (sslmode=%s)",
		c.config.Host, c.config.Port, c.config.Database, c.config.Username, c.config.SSLMode)

	var pool *pgxpool.Pool
	err = c.executor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
	}
	return pool, nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var msg string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		msg = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host"):
		msg = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		msg = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong or missing password (check $PGPASSWORD or the connection string)
  - Wrong username (-U or $PGUSER)`, database)

	case strings.Contains(errStr, "does not exist"):
		msg = fmt.Sprintf(`database "%s" does not exist

To create it:
  createdb %s

Or pass --create-db to let univload create it.`, database, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out") || strings.Contains(errStr, "deadline exceeded"):
		msg = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		msg = `SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)`

	default:
		msg = "failed to connect to database"
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", msg, err, univload.ErrConnectionFailed)
}
