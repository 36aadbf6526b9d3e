package db

import (
	"fmt"
	"strconv"

	"github.com/univinfo/univload/internal/config"
	"github.com/univinfo/univload/pkg/univload"
)

// ConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is deliberately absent. Supply it through $PGPASSWORD, the
// connection string, or univload.yaml.
type ConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given. Database is
// excluded because -d may override the database of a connection string.
func (f *ConnFlags) IsEmpty() bool {
	return f.Host == "" && f.Port == 0 && f.Username == "" && f.SSLMode == ""
}

// Resolve builds the connection configuration using this precedence:
//
//  1. --connection flag, else $DATABASE_URL when no granular flag is set
//  2. granular flags (-h, -p, -U, -d, --sslmode)
//  3. environment (PGHOST, PGPORT, PGUSER, PGPASSWORD, PGDATABASE, PGSSLMODE)
//  4. univload.yaml
//  5. defaults (localhost:5432, user postgres, database univ_info, sslmode prefer)
//
// It also returns the maintenance database used for CREATE DATABASE.
// Giving both --connection and granular flags is an error.
func Resolve(connString string, flags *ConnFlags, env *config.Env, project *config.ProjectConfig) (*univload.ConnectionConfig, string, error) {
	if flags == nil {
		flags = &ConnFlags{}
	}
	if env == nil {
		env = &config.Env{}
	}
	var pc config.ConnectionConfig
	if project != nil {
		pc = project.Connection
	}

	if connString != "" && !flags.IsEmpty() {
		return nil, "", fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/univ_info\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d univ_info\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			univload.ErrInvalidConfig)
	}

	if connString == "" && flags.IsEmpty() {
		connString = env.DatabaseURL
	}

	var (
		cfg *univload.ConnectionConfig
		err error
	)
	if connString != "" {
		cfg, err = ParseConnectionString(connString)
		if err != nil {
			return nil, "", fmt.Errorf("invalid connection string: %v: %w", err, univload.ErrInvalidConfig)
		}
		if flags.Database != "" {
			cfg.Database = flags.Database
		}
	} else {
		cfg, err = resolveGranular(flags, env, pc)
		if err != nil {
			return nil, "", err
		}
	}

	// Connection strings may omit these; fall back like libpq does.
	cfg.Password = firstNonEmpty(cfg.Password, env.PGPassword, pc.Password)
	cfg.SSLMode = firstNonEmpty(cfg.SSLMode, env.PGSSLMode, pc.SSLMode, univload.DefaultSSLMode)
	if cfg.AppName == "" {
		cfg.AppName = "univload"
	}

	maintenanceDB := firstNonEmpty(pc.ManagementDatabase, univload.DefaultManagementDB)
	return cfg, maintenanceDB, nil
}

func resolveGranular(flags *ConnFlags, env *config.Env, pc config.ConnectionConfig) (*univload.ConnectionConfig, error) {
	cfg := &univload.ConnectionConfig{
		Host:             firstNonEmpty(flags.Host, env.PGHost, pc.Host, univload.DefaultHost),
		Username:         firstNonEmpty(flags.Username, env.PGUser, pc.Username, univload.DefaultUser),
		Database:         firstNonEmpty(flags.Database, env.PGDatabase, pc.Database, univload.DefaultDatabase),
		SSLMode:          firstNonEmpty(flags.SSLMode, env.PGSSLMode, pc.SSLMode),
		AdditionalParams: make(map[string]string),
	}

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPort != "":
		port, err := strconv.Atoi(env.PGPort)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPort, univload.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = univload.DefaultPort
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
