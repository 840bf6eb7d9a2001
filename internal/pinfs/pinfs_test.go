package pinfs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveStale_MissingPathSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never-pinned")

	require.NoError(t, RemoveStale(path))

	// Repeated removal stays idempotent.
	require.NoError(t, RemoveStale(path))
}

func TestRemoveStale_RemovesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, RemoveStale(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracer", "task_map")

	require.NoError(t, EnsureParent(path))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Existing directory is fine.
	require.NoError(t, EnsureParent(path))
}

func TestRelaxMap(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	path := filepath.Join(t.TempDir(), "task_map")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	require.NoError(t, RelaxMap(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(MapMode), info.Mode().Perm())
}

func TestRelaxParent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	dir := filepath.Join(t.TempDir(), "tracer")
	require.NoError(t, os.Mkdir(dir, 0o700))

	path := filepath.Join(dir, "task_map")
	require.NoError(t, RelaxParent(path))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(DirMode), info.Mode().Perm())
}

func TestRelaxMap_MissingPathFails(t *testing.T) {
	err := RelaxMap(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
