package storage

import (
	"context"
	"testing"
	"time"

	"github.com/raterudder/retrofit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	testDatabase(t, NewMemory())
}

// testDatabase exercises the behaviour every provider shares.
func testDatabase(t *testing.T, db Database) {
	ctx := context.Background()

	s, ok := types.DefaultScenario(types.AssetStorage)
	require.True(t, ok)
	s.ID = "test-storage-" + time.Now().Format("150405.000000000")

	t.Run("EmptyID", func(t *testing.T) {
		err := db.PutScenario(ctx, types.Scenario{}, types.CurrentScenarioVersion)
		assert.ErrorContains(t, err, "scenario id cannot be empty")
	})

	t.Run("Scenarios", func(t *testing.T) {
		require.NoError(t, db.PutScenario(ctx, s, 1))

		got, version, err := db.GetScenario(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, version)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, s.Storage, got.Storage)

		s.Storage.PowerKW = 250
		require.NoError(t, db.PutScenario(ctx, s, types.CurrentScenarioVersion))
		got, version, err = db.GetScenario(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, types.CurrentScenarioVersion, version)
		assert.Equal(t, 250.0, got.Storage.PowerKW)

		records, err := db.ListScenarios(ctx)
		require.NoError(t, err)
		found := false
		for _, r := range records {
			if r.Scenario.ID == s.ID {
				found = true
				assert.Equal(t, types.CurrentScenarioVersion, r.Version)
			}
		}
		assert.True(t, found)

		_, _, err = db.GetScenario(ctx, "missing-"+s.ID)
		assert.ErrorIs(t, err, ErrScenarioNotFound)
	})

	t.Run("Results", func(t *testing.T) {
		_, err := db.GetLatestResult(ctx, s.ID)
		assert.ErrorIs(t, err, ErrResultNotFound)

		now := time.Now().Truncate(time.Millisecond).UTC()
		older := types.Result{RunID: "run-1", ScenarioID: s.ID, Asset: s.Asset, CreatedAt: now.Add(-time.Hour)}
		newer := types.Result{RunID: "run-2", ScenarioID: s.ID, Asset: s.Asset, CreatedAt: now}
		require.NoError(t, db.InsertResult(ctx, s.ID, newer))
		require.NoError(t, db.InsertResult(ctx, s.ID, older))

		got, err := db.GetLatestResult(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "run-2", got.RunID)
		assert.True(t, got.CreatedAt.Equal(now))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.DeleteScenario(ctx, s.ID))
		_, _, err := db.GetScenario(ctx, s.ID)
		assert.ErrorIs(t, err, ErrScenarioNotFound)
		_, err = db.GetLatestResult(ctx, s.ID)
		assert.ErrorIs(t, err, ErrResultNotFound)
		assert.ErrorIs(t, db.DeleteScenario(ctx, s.ID), ErrScenarioNotFound)
	})
}

func TestOpenProvider(t *testing.T) {
	ctx := context.Background()

	db, err := openProvider(ctx, "memory", &FirestoreProvider{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, db)

	_, err = openProvider(ctx, "postgres", &FirestoreProvider{})
	assert.EqualError(t, err, "unknown storage provider: postgres")

	t.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	_, err = openProvider(ctx, "firestore", &FirestoreProvider{})
	assert.ErrorContains(t, err, "firestore validation failed")
}
