package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/database"
	"github.com/jask/coursedesk/internal/database/repository"
	"github.com/jask/coursedesk/internal/prefs"
	"github.com/jask/coursedesk/internal/secrets"
)

func TestMaintenanceReset(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := database.OpenMigrated(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	vault := secrets.NewVault(repository.NewStateRepo(db), "k")
	require.NoError(t, vault.Save(ctx, "credential"))
	prefsPath := filepath.Join(dir, "prefs.json")
	require.NoError(t, prefs.Save(prefsPath, prefs.Prefs{LastUsername: "alice"}))

	m := &Maintenance{DB: db, PrefsPath: prefsPath}
	require.NoError(t, m.Reset(ctx))

	_, err = vault.Load(ctx)
	require.ErrorIs(t, err, secrets.ErrNoCredential)
	p, err := prefs.Load(prefsPath)
	require.NoError(t, err)
	require.Empty(t, p.LastUsername)

	require.Error(t, (&Maintenance{}).Reset(ctx))
}
