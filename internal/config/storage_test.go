package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorage(t *testing.T) {
	s := NewStorage("/var/lib/holochain-conductor", "")
	assert.Equal(t, "/var/lib/holochain-conductor/conductor-config.toml", s.Path())

	custom := NewStorage("/tmp/c", "custom.toml")
	assert.Equal(t, "/tmp/c/custom.toml", custom.Path())
}

func TestStorage_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "persistence")
	s := NewStorage(dir, "")

	require.NoError(t, s.Save([]byte("persistence_dir = '/p'\n")))

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "persistence_dir = '/p'\n", string(data))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestStorage_SaveReplaces(t *testing.T) {
	dir := t.TempDir()
	s := NewStorage(dir, "")

	require.NoError(t, s.Save([]byte("first")))
	require.NoError(t, s.Save([]byte("second")))

	data, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStorage_LoadMissing(t *testing.T) {
	s := NewStorage(t.TempDir(), "")

	_, err := s.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
	assert.Contains(t, err.Error(), s.Path())
}

func TestStorage_SaveIntoFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	s := NewStorage(filepath.Join(blocker, "sub"), "")
	err := s.Save([]byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}
