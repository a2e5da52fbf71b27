package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "a", "b", "vault.db")

	dir, err := EnsureParentDir(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "a", "b"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	_, err = EnsureParentDir(path)
	require.NoError(t, err)
}
