package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univinfo/univload/internal/registry"
	testhelpers "github.com/univinfo/univload/internal/testing"
)

func TestPostgresCommands(t *testing.T) {
	_, connString := testhelpers.NewTestDatabase(t)

	out, err := executeRoot(t, "ping", "--connection", connString)
	require.NoError(t, err)
	assert.Contains(t, out, "connected to")

	out, err = executeRoot(t, "migrate", "status", "--connection", connString)
	require.NoError(t, err)
	assert.Contains(t, out, "pending")

	out, err = executeRoot(t, "migrate", "--connection", connString)
	require.NoError(t, err)
	assert.Contains(t, out, "00001_create_registry_tables.sql")

	out, err = executeRoot(t, "migrate", "--connection", connString)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date.")

	path := writeRegistry(t,
		registryRow(1001, "Test Foundation"),
		registryRow(1002, "Test Foundation"),
	)
	out, err = executeRoot(t, "import", path, "--connection", connString, "--skip-migrate")
	require.NoError(t, err)
	assert.Regexp(t, `Rows inserted\s+2`, out)

	out, err = executeRoot(t, "corporations", "--connection", connString, "--json")
	require.NoError(t, err)
	var corps []registry.Corporation
	require.NoError(t, json.Unmarshal([]byte(out), &corps))
	require.Len(t, corps, 1)
	assert.Equal(t, "Test Foundation", corps[0].Name)
}
