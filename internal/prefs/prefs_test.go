package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRemove(t *testing.T) {
	path := PathFor(filepath.Join(t.TempDir(), "nested", "coursedesk.db"))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Prefs{}, p)

	require.NoError(t, Save(path, Prefs{LastUsername: "alice"}))
	p, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "alice", p.LastUsername)

	require.NoError(t, Remove(path))
	require.NoError(t, Remove(path))
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
