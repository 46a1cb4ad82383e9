package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMigratesAndLocks(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fieldlog.db")
	cfg := &config.Config{StoreDriver: config.DriverSQLite, DatabaseDSN: path}

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))

	repos := s.Repositories()
	d, err := repos.Deployments.Create(ctx, &models.Deployment{ID: "d1", Mode: models.ModeROV, Name: "ROV 1"})
	require.NoError(t, err)

	got, err := repos.Deployments.Get(ctx, models.ModeROV, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "ROV 1", got.Name)

	var fk int
	require.NoError(t, s.DB.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	_, err = Open(ctx, cfg)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, s.Close())

	again, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, again.Migrate(ctx))
	require.NoError(t, again.Close())
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, &config.Config{StoreDriver: config.DriverMemory})
	require.NoError(t, err)
	assert.Nil(t, s.DB)
	require.NoError(t, s.Migrate(ctx))

	_, err = s.Repositories().Tapes.Create(ctx, &models.Tape{DeploymentID: "d1", Number: "T-1"})
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "oracle"})
	require.Error(t, err)
}
