package path

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	assert.Equal(t, "/srv/app/data/images", Resolve("/srv/app", "./data/images"))
	assert.Equal(t, "/var/images", Resolve("/srv/app", "/var/images/"))
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()

	dir := filepath.Join(base, "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(base, "file.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, EnsureDir(file))
}

func TestRootPath(t *testing.T) {
	_, err := os.Stat(filepath.Join(RootPath(), "go.mod"))
	assert.NoError(t, err)
}
