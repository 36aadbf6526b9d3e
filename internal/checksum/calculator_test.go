package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256("abc")
const abcSum = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestReader_KnownVector(t *testing.T) {
	sum, err := Reader(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, abcSum, sum)
}

func TestFile_MatchesReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	sum, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, abcSum, sum)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShort(t *testing.T) {
	assert.Equal(t, "ba7816bf8f01", Short(abcSum))
	assert.Equal(t, "abc", Short("abc"))
}
