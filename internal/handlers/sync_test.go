// internal/handlers/sync_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pklemenc/shelfsync/internal/adapters/localdb"
	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/syncer"
)

// fakeSyncEngine returns a scripted result.
type fakeSyncEngine struct {
	res  *syncer.Result
	err  error
	last *syncer.Result
}

func (f *fakeSyncEngine) Sync(context.Context) (*syncer.Result, error) { return f.res, f.err }
func (f *fakeSyncEngine) Last() *syncer.Result                         { return f.last }

// fakeConnMonitor reports a fixed reachability state.
type fakeConnMonitor struct {
	online bool
}

func (f *fakeConnMonitor) Online() bool { return f.online }
func (f *fakeConnMonitor) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool)
	return ch, func() {}
}

func TestSyncHandler_Trigger(t *testing.T) {
	store := localdb.NewTestStore(t)
	engine := &fakeSyncEngine{res: &syncer.Result{
		Stage:   syncer.StageReconciled,
		Drained: 4,
	}}
	h := NewSyncHandler(engine, store, &fakeConnMonitor{online: true}, testLogger())

	rec := httptest.NewRecorder()
	h.Trigger(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var res syncer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, syncer.StageReconciled, res.Stage)
	assert.Equal(t, 4, res.Drained)
}

func TestSyncHandler_Trigger_Coalesced(t *testing.T) {
	store := localdb.NewTestStore(t)
	engine := &fakeSyncEngine{err: syncer.ErrSyncInProgress}
	h := NewSyncHandler(engine, store, &fakeConnMonitor{}, testLogger())

	rec := httptest.NewRecorder()
	h.Trigger(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in progress")
}

func TestSyncHandler_Trigger_FailedCycle(t *testing.T) {
	store := localdb.NewTestStore(t)
	engine := &fakeSyncEngine{res: &syncer.Result{
		Stage:  syncer.StageError,
		Errors: []string{"draining aborted: remote authority unavailable"},
	}}
	h := NewSyncHandler(engine, store, &fakeConnMonitor{}, testLogger())

	rec := httptest.NewRecorder()
	h.Trigger(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

	// The cycle ran and failed; the result travels with the 502.
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var res syncer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, syncer.StageError, res.Stage)
	require.Len(t, res.Errors, 1)
}

func TestSyncHandler_Status(t *testing.T) {
	store := localdb.NewTestStore(t)
	ctx := context.Background()

	_, err := store.Pending().Enqueue(ctx, domain.OpCreate, domain.EntityItem,
		&domain.Item{ID: "item-1"})
	require.NoError(t, err)
	_, err = store.Pending().Enqueue(ctx, domain.OpCreate, domain.EntityItem,
		&domain.Item{ID: "item-2"})
	require.NoError(t, err)

	lastSync := time.Now().UTC().Truncate(time.Second)
	settings, err := store.Settings().Get(ctx)
	require.NoError(t, err)
	settings.LastSyncAt = &lastSync
	require.NoError(t, store.Settings().Put(ctx, settings))

	engine := &fakeSyncEngine{last: &syncer.Result{Stage: syncer.StageReconciled}}
	h := NewSyncHandler(engine, store, &fakeConnMonitor{online: true}, testLogger())

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status SyncStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Online)
	assert.EqualValues(t, 2, status.PendingCount)
	require.NotNil(t, status.LastSyncAt)
	assert.WithinDuration(t, lastSync, *status.LastSyncAt, time.Second)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, syncer.StageReconciled, status.LastResult.Stage)
}
