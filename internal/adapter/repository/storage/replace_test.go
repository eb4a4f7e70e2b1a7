package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestReplaceFile_CreatesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	err := ReplaceFile(path, func(tmp string) error { return WriteFile(tmp, []byte("first")) })
	require.NoError(t, err)

	err = ReplaceFile(path, func(tmp string) error { return WriteFile(tmp, []byte("second")) })
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, []string{"state.json"}, listDir(t, dir))
}

func TestReplaceFile_FailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	boom := errors.New("boom")
	err := ReplaceFile(path, func(tmp string) error {
		require.NoError(t, WriteFile(tmp, []byte("half")))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assert.Equal(t, []string{"state.json"}, listDir(t, dir), "temp file must be cleaned up")
}

func TestReplaceFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "state.json")

	err := ReplaceFile(path, func(tmp string) error { return nil })

	assert.Error(t, err)
	assert.NoFileExists(t, path)
}
