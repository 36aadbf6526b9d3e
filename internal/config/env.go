package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/univinfo/univload/pkg/univload"
)

// Env holds the environment variables univload reads: the libpq standard
// PG* set, DATABASE_URL, and UNIVLOAD_* overrides for import settings.
// See https://www.postgresql.org/docs/current/libpq-envars.html
type Env struct {
	PGHost      string `env:"PGHOST"`
	PGPort      string `env:"PGPORT"`
	PGUser      string `env:"PGUSER"`
	PGPassword  string `env:"PGPASSWORD"`
	PGDatabase  string `env:"PGDATABASE"`
	PGSSLMode   string `env:"PGSSLMODE"`
	DatabaseURL string `env:"DATABASE_URL"`

	Driver     string        `env:"UNIVLOAD_DRIVER"`
	SQLitePath string        `env:"UNIVLOAD_SQLITE_PATH"`
	Sheet      string        `env:"UNIVLOAD_SHEET"`
	BatchSize  int           `env:"UNIVLOAD_BATCH_SIZE"`
	Timeout    time.Duration `env:"UNIVLOAD_TIMEOUT"`
	LogLevel   string        `env:"UNIVLOAD_LOG_LEVEL"`
	LogFormat  string        `env:"UNIVLOAD_LOG_FORMAT"`
}

// LoadEnv loads .env files (missing files are ignored) into the process
// environment and then parses it. Variables already set win over .env.
func LoadEnv(dotenvFiles ...string) (*Env, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %v: %w", f, err, univload.ErrInvalidConfig)
		}
	}
	return ParseEnv(env.Options{})
}

// ParseEnv parses the environment described by opts. Tests pass
// opts.Environment to avoid touching the process environment.
func ParseEnv(opts env.Options) (*Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return nil, fmt.Errorf("environment: %v: %w", err, univload.ErrInvalidConfig)
	}
	return &e, nil
}
