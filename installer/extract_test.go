package installer

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip creates a zip archive at path with the given entries. Entries
// whose name ends in '/' become directories.
func writeZip(t *testing.T, path string, entries map[string]string) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, contents := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if contents != "" {
			_, err = w.Write([]byte(contents))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "game.zip")
	writeZip(t, archive, map[string]string{
		"game.exe":         "binary",
		"data/levels.dat":  "levels",
		"data/sub/map.txt": "map",
	})

	destDir := filepath.Join(dir, "installed")
	require.NoError(t, Extract(context.Background(), archive, destDir))

	got, err := os.ReadFile(filepath.Join(destDir, "game.exe"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(got))
	got, err = os.ReadFile(filepath.Join(destDir, "data", "sub", "map.txt"))
	require.NoError(t, err)
	assert.Equal(t, "map", string(got))

	// The archive is deleted once extracted.
	_, err = os.Stat(archive)
	assert.True(t, os.IsNotExist(err), "Archive should be removed after extraction")
}

func TestExtractRejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeZip(t, archive, map[string]string{
		"../evil.txt": "escape attempt",
	})

	destDir := filepath.Join(dir, "installed")
	err := Extract(context.Background(), archive, destDir)
	require.Error(t, err)

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, archive, ee.Archive)

	// Nothing was written outside the destination dir, and the archive is
	// kept for inspection.
	_, err = os.Stat(filepath.Join(dir, "evil.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(archive)
	assert.NoError(t, err)
}

func TestExtractBadArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "not-a.zip")
	require.NoError(t, os.WriteFile(archive, []byte("this is not a zip"), 0644))

	err := Extract(context.Background(), archive, filepath.Join(dir, "installed"))
	require.Error(t, err)
	var ee *ExtractionError
	assert.True(t, errors.As(err, &ee))
}

func TestExtractCancelledContext(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "game.zip")
	writeZip(t, archive, map[string]string{"game.exe": "binary"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, Extract(ctx, archive, filepath.Join(dir, "installed")))
}
