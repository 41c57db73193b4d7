package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDriver(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a postgres container")
	}
	if getDriverFromEnv() == "postgres" {
		t.Skip("the whole package already runs against postgres")
	}
	ctx := context.Background()
	ts := NewTestingStoreWithProfile(ctx, t, GetTestingProfileForDriver(t, "postgres"))

	t.Run("Initialized", func(t *testing.T) {
		initialized, err := ts.GetDriver().IsInitialized(ctx)
		require.NoError(t, err)
		assert.True(t, initialized)
	})
	t.Run("ViewStateStore", func(t *testing.T) {
		testViewStateStore(t, ts)
	})
	t.Run("MigrateIsIdempotent", func(t *testing.T) {
		testMigrateIsIdempotent(t, ts)
	})
	t.Run("ConcurrentUpsertsKeepOneRow", func(t *testing.T) {
		testViewStateConcurrentUpsertsKeepOneRow(t, ts)
	})
}
