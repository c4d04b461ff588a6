package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/coursedesk/internal/database"
	"github.com/jask/coursedesk/internal/database/repository"
)

func TestStateRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewStateRepo(db)

	_, err = repo.Get(ctx, "k")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Put(ctx, "k", "v1"))
	require.NoError(t, repo.Put(ctx, "k", "v2"))
	v, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)

	require.NoError(t, repo.Delete(ctx, "k"))
	require.NoError(t, repo.Delete(ctx, "k"))
	_, err = repo.Get(ctx, "k")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMigrationsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := database.OpenMigrated(path)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrationsWithDB(db))
	require.NoError(t, db.Close())

	db, err = database.OpenMigrated(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
