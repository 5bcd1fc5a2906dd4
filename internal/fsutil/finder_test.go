package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("# test"), 0o644))
	}
}

func TestFindFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	writeFiles(t, root, "b.hcl", "a.yaml", "nested/c.hcl", "notes.txt", "nested/d.jsonc")

	// --- Act ---
	files, err := FindFiles([]string{root, filepath.Join(root, "b.hcl")}, ".hcl", ".jsonc")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
		filepath.Join(root, "nested", "d.jsonc"),
	}, files)
}

func TestFindFiles_SingleFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "play.yaml")

	files, err := FindFiles([]string{filepath.Join(root, "play.yaml")}, ".yaml", ".yml")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "play.yaml")}, files)

	files, err = FindFiles([]string{filepath.Join(root, "play.yaml")}, ".hcl")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFiles_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := FindFiles([]string{filepath.Join(t.TempDir(), "missing")}, ".hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindFiles_PanicsWithoutExtensions(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { _, _ = FindFiles([]string{"."}) })
}
