package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univinfo/univload/internal/config"
	"github.com/univinfo/univload/pkg/univload"
)

func TestResolve_Defaults(t *testing.T) {
	cfg, maintenance, err := Resolve("", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "postgres", cfg.Username)
	assert.Equal(t, "univ_info", cfg.Database)
	assert.Equal(t, "prefer", cfg.SSLMode)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, "postgres", maintenance)
}

func TestResolve_Precedence(t *testing.T) {
	env := &config.Env{PGHost: "envhost", PGPort: "6000", PGUser: "envuser", PGPassword: "envpw"}
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{
		Host: "yamlhost", Port: 7000, Username: "yamluser", Database: "yamldb", SSLMode: "require", Password: "yamlpw",
	}}
	flags := &ConnFlags{Host: "flaghost"}

	cfg, _, err := Resolve("", flags, env, project)
	require.NoError(t, err)

	assert.Equal(t, "flaghost", cfg.Host)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "envuser", cfg.Username)
	assert.Equal(t, "yamldb", cfg.Database)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Equal(t, "envpw", cfg.Password)
}

func TestResolve_ConfigFilePasswordUsedWhenEnvMissing(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{Password: "yamlpw", ManagementDatabase: "template1"}}

	cfg, maintenance, err := Resolve("", nil, &config.Env{}, project)
	require.NoError(t, err)
	assert.Equal(t, "yamlpw", cfg.Password)
	assert.Equal(t, "template1", maintenance)
}

func TestResolve_ConnectionStringWithDatabaseOverride(t *testing.T) {
	env := &config.Env{PGPassword: "envpw", PGSSLMode: "verify-full"}

	cfg, _, err := Resolve("postgresql://loader@db:5432/other", &ConnFlags{Database: "univ_info"}, env, nil)
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Host)
	assert.Equal(t, "loader", cfg.Username)
	assert.Equal(t, "univ_info", cfg.Database)
	assert.Equal(t, "envpw", cfg.Password)
	assert.Equal(t, "verify-full", cfg.SSLMode)
}

func TestResolve_DatabaseURL(t *testing.T) {
	env := &config.Env{DatabaseURL: "postgres://u:p@urlhost/urldb", PGHost: "ignored"}

	cfg, _, err := Resolve("", nil, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "urlhost", cfg.Host)
	assert.Equal(t, "p", cfg.Password)

	// granular flags take over from DATABASE_URL
	cfg, _, err = Resolve("", &ConnFlags{Port: 5499}, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "ignored", cfg.Host)
	assert.Equal(t, 5499, cfg.Port)
}

func TestResolve_Conflicts(t *testing.T) {
	_, _, err := Resolve("postgresql://h/d", &ConnFlags{Host: "x"}, nil, nil)
	assert.ErrorIs(t, err, univload.ErrInvalidConfig)
}

func TestResolve_InvalidInputs(t *testing.T) {
	_, _, err := Resolve("", nil, &config.Env{PGPort: "abc"}, nil)
	assert.ErrorIs(t, err, univload.ErrInvalidConfig)

	_, _, err = Resolve("nonsense", nil, nil, nil)
	assert.ErrorIs(t, err, univload.ErrInvalidConfig)
}
