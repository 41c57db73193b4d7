package test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Edelbertschen/taskfuchs-sub005/store"
)

func newUserID() string {
	return "user-" + uuid.NewString()
}

func TestViewStateStore(t *testing.T) {
	testViewStateStore(t, NewTestingStore(context.Background(), t))
}

func testViewStateStore(t *testing.T, ts *store.Store) {
	ctx := context.Background()
	userID := newUserID()

	viewState, err := ts.GetViewState(ctx, &store.FindViewState{UserID: &userID})
	require.NoError(t, err)
	assert.Nil(t, viewState, "nothing stored yet")

	created, err := ts.UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"currentMode":"list"}`})
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)
	assert.JSONEq(t, `{"currentMode":"list"}`, created.State)
	assert.NotZero(t, created.CreatedTs)
	assert.GreaterOrEqual(t, created.UpdatedTs, created.CreatedTs)

	viewState, err = ts.GetViewState(ctx, &store.FindViewState{UserID: &userID})
	require.NoError(t, err)
	require.NotNil(t, viewState)
	assert.JSONEq(t, `{"currentMode":"list"}`, viewState.State)

	updated, err := ts.UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"currentMode":"columns","tags":[1,2]}`})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedTs, updated.CreatedTs, "upsert keeps the original row")
	assert.JSONEq(t, `{"currentMode":"columns","tags":[1,2]}`, updated.State)

	viewState, err = ts.GetViewState(ctx, &store.FindViewState{UserID: &userID, SkipCache: true})
	require.NoError(t, err)
	require.NotNil(t, viewState)
	assert.JSONEq(t, `{"currentMode":"columns","tags":[1,2]}`, viewState.State)
}

func TestViewStateReadAfterWriteSkipsStaleCache(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	userID := newUserID()

	_, err := ts.UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"v":1}`})
	require.NoError(t, err)

	// Warm the cache.
	viewState, err := ts.GetViewState(ctx, &store.FindViewState{UserID: &userID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, viewState.State)

	_, err = ts.UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"v":2}`})
	require.NoError(t, err)

	viewState, err = ts.GetViewState(ctx, &store.FindViewState{UserID: &userID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, viewState.State)
}

func TestViewStateSkipCacheReadsDatabase(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	userID := newUserID()

	_, err := ts.UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"v":1}`})
	require.NoError(t, err)
	_, err = ts.GetViewState(ctx, &store.FindViewState{UserID: &userID})
	require.NoError(t, err)

	// Written behind the store's back, so the cache still holds v1.
	_, err = ts.GetDriver().UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"v":2}`})
	require.NoError(t, err)

	cached, err := ts.GetViewState(ctx, &store.FindViewState{UserID: &userID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, cached.State)

	fresh, err := ts.GetViewState(ctx, &store.FindViewState{UserID: &userID, SkipCache: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, fresh.State)
}

func TestViewStateIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	alice, bob := newUserID(), newUserID()

	_, err := ts.UpsertViewState(ctx, &store.UpsertViewState{UserID: alice, State: `{"owner":"alice"}`})
	require.NoError(t, err)

	viewState, err := ts.GetViewState(ctx, &store.FindViewState{UserID: &bob})
	require.NoError(t, err)
	assert.Nil(t, viewState)
}

func TestViewStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	profile := GetTestingProfile(t)
	userID := newUserID()

	first := NewTestingStoreWithProfile(ctx, t, profile)
	_, err := first.UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"taskView":"board"}`})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := NewTestingStoreWithProfile(ctx, t, profile)
	viewState, err := second.GetViewState(ctx, &store.FindViewState{UserID: &userID})
	require.NoError(t, err)
	require.NotNil(t, viewState)
	assert.JSONEq(t, `{"taskView":"board"}`, viewState.State)
}

func TestViewStateConcurrentUpsertsKeepOneRow(t *testing.T) {
	testViewStateConcurrentUpsertsKeepOneRow(t, NewTestingStore(context.Background(), t))
}

func testViewStateConcurrentUpsertsKeepOneRow(t *testing.T, ts *store.Store) {
	ctx := context.Background()
	userID := newUserID()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.UpsertViewState(ctx, &store.UpsertViewState{UserID: userID, State: `{"n":1}`})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int
	err := ts.GetDriver().GetDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM view_state WHERE user_id = '"+userID+"'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestViewStateRequiresUserID(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.GetViewState(ctx, &store.FindViewState{})
	assert.Error(t, err)
	_, err = ts.UpsertViewState(ctx, &store.UpsertViewState{State: `{}`})
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	testMigrateIsIdempotent(t, NewTestingStore(context.Background(), t))
}

func testMigrateIsIdempotent(t *testing.T, ts *store.Store) {
	ctx := context.Background()

	require.NoError(t, ts.Migrate(ctx))

	schemaVersion, err := ts.GetSchemaVersion(ctx)
	require.NoError(t, err)
	current, err := ts.GetCurrentSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, current, schemaVersion)
}
