package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/castle/internal/game/save"
	"github.com/cory-johannsen/castle/internal/storage/postgres"
	"github.com/cory-johannsen/castle/internal/testutil"
)

func newContainer(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	return testutil.NewPostgresContainer(t)
}

func TestPool_SchemaCheck(t *testing.T) {
	pc := newContainer(t)
	ctx := context.Background()

	err := pc.Pool.CheckSchema(ctx)
	assert.True(t, errors.Is(err, postgres.ErrSchemaMissing))
	assert.True(t, errors.Is(pc.Pool.Health(ctx, 5*time.Second), postgres.ErrSchemaMissing))
	_, err = postgres.Open(ctx, pc.Config)
	assert.True(t, errors.Is(err, postgres.ErrSchemaMissing))

	pc.ApplyMigrations(t)
	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))
	pool, err := postgres.Open(ctx, pc.Config)
	require.NoError(t, err)
	pool.Close()
}

func snapshot(room int, at time.Time) save.Snapshot {
	return save.Snapshot{
		ID:       uuid.New(),
		SavedAt:  at,
		Room:     room,
		Entities: []save.Entity{{ID: 1, Player: true, Position: &save.Point{X: 12, Y: 9}}},
	}
}

func TestSnapshotRepository(t *testing.T) {
	pc := newContainer(t)
	pc.ApplyMigrations(t)
	repo := pc.Pool.Snapshots()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		_, err := repo.Load(ctx)
		assert.True(t, errors.Is(err, save.ErrNoSnapshot))
	})

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	first := snapshot(3, base)
	second := snapshot(12, base.Add(time.Hour))

	t.Run("save and load newest", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, second))
		require.NoError(t, repo.Save(ctx, first))
		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, second.Entities, got.Entities)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		assert.Error(t, repo.Save(ctx, first))
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, 3, got.Room)

		_, err = repo.Get(ctx, uuid.New())
		assert.True(t, errors.Is(err, save.ErrNoSnapshot))
	})
}
