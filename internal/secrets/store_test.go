package secrets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/database"
	"github.com/jask/coursedesk/internal/database/repository"
)

func newRepo(t *testing.T) *repository.StateRepo {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewStateRepo(db)
}

func TestVaultRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)
	v := NewVault(repo, "pass")

	_, err := v.Load(ctx)
	require.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, v.Save(ctx, "a.b.c"))
	got, err := v.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "a.b.c", got)

	stored, err := repo.Get(ctx, credentialKey)
	require.NoError(t, err)
	require.NotContains(t, stored, "a.b.c")

	require.NoError(t, v.Delete(ctx))
	_, err = v.Load(ctx)
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestVaultWrongKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, NewVault(repo, "one").Save(ctx, "a.b.c"))

	_, err := NewVault(repo, "two").Load(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoCredential)
}
