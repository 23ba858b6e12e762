// internal/syncer/engine_test.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pklemenc/shelfsync/internal/adapters/localdb"
	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuthority is a scriptable remote. Mutations are recorded in call order;
// per-id rejections and a global unavailable switch model the two failure
// classes the engine distinguishes.
type fakeAuthority struct {
	mu sync.Mutex

	unavailable bool
	reject      map[string]error

	calls []string

	pullItems []domain.Item
	pullTxs   []domain.Transaction

	pullGate    chan struct{} // when set, ListItems blocks until closed
	pullStarted chan struct{}
}

func (f *fakeAuthority) record(call, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return fmt.Errorf("%s: %w", call, ports.ErrRemoteUnavailable)
	}
	if err, ok := f.reject[id]; ok {
		return err
	}
	f.calls = append(f.calls, call+":"+id)
	return nil
}

func (f *fakeAuthority) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAuthority) ListItems(context.Context, domain.OrgID) ([]domain.Item, error) {
	if f.pullGate != nil {
		select {
		case f.pullStarted <- struct{}{}:
		default:
		}
		<-f.pullGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, ports.ErrRemoteUnavailable
	}
	return f.pullItems, nil
}

func (f *fakeAuthority) CreateItem(_ context.Context, item *domain.Item) error {
	return f.record("create-item", item.ID)
}
func (f *fakeAuthority) UpdateItem(_ context.Context, item *domain.Item) error {
	return f.record("update-item", item.ID)
}
func (f *fakeAuthority) DeleteItem(_ context.Context, id string) error {
	return f.record("delete-item", id)
}

func (f *fakeAuthority) ListTransactions(context.Context, int) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, ports.ErrRemoteUnavailable
	}
	return f.pullTxs, nil
}

func (f *fakeAuthority) CreateTransaction(_ context.Context, t *domain.Transaction) error {
	return f.record("create-transaction", t.ID)
}
func (f *fakeAuthority) DeleteTransaction(_ context.Context, id string) error {
	return f.record("delete-transaction", id)
}

func (f *fakeAuthority) ListOrganizations(context.Context) ([]domain.Organization, error) {
	return nil, nil
}
func (f *fakeAuthority) CreateOrganization(context.Context, *domain.Organization) error { return nil }
func (f *fakeAuthority) UpdateOrganization(context.Context, *domain.Organization) error { return nil }
func (f *fakeAuthority) DeleteOrganization(context.Context, string) error               { return nil }
func (f *fakeAuthority) Stats(context.Context, domain.OrgID) (*domain.Stats, error) {
	return nil, ports.ErrRemoteUnavailable
}
func (f *fakeAuthority) BulkSync(context.Context, []domain.Item, []domain.Transaction) (*ports.BulkResult, error) {
	return nil, ports.ErrRemoteUnavailable
}

func pendingItem(id string, quantity int) *domain.Item {
	now := time.Now().UTC()
	return &domain.Item{
		ID: id, Name: "Item " + id, Quantity: quantity,
		CreatedAt: now, UpdatedAt: now,
	}
}

func enqueueItem(t *testing.T, store *localdb.Store, op domain.OpKind, item *domain.Item) {
	t.Helper()
	ctx := context.Background()
	if op != domain.OpDelete {
		require.NoError(t, store.Items().Put(ctx, item))
	}
	_, err := store.Pending().Enqueue(ctx, op, domain.EntityItem, item)
	require.NoError(t, err)
}

func TestEngine_Sync_DrainsInOrder(t *testing.T) {
	store := localdb.NewTestStore(t)
	remote := &fakeAuthority{}
	engine := NewEngine(store, remote, 0, testLogger())
	ctx := context.Background()

	enqueueItem(t, store, domain.OpCreate, pendingItem("item-a", 5))
	enqueueItem(t, store, domain.OpUpdate, pendingItem("item-a", 8))

	tx := &domain.Transaction{
		ID: "tx-1", ItemID: "item-a", Direction: domain.DirectionOut,
		Quantity: 2, OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, store.Transactions().Put(ctx, tx))
	_, err := store.Pending().Enqueue(ctx, domain.OpCreate, domain.EntityTransaction, tx)
	require.NoError(t, err)

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, StageReconciled, res.Stage)
	assert.Equal(t, 3, res.Drained)
	assert.Equal(t, 0, res.DrainFailed)

	// Replay order matches enqueue order exactly.
	assert.Equal(t, []string{
		"create-item:item-a",
		"update-item:item-a",
		"create-transaction:tx-1",
	}, remote.recorded())

	count, err := store.Pending().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// Drained records flip to synced locally.
	item, err := store.Items().Get(ctx, "item-a")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, domain.SyncSynced, item.SyncStatus)

	// A completed cycle stamps the sync time.
	settings, err := store.Settings().Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings.LastSyncAt)
	assert.WithinDuration(t, time.Now().UTC(), *settings.LastSyncAt, 5*time.Second)

	assert.Equal(t, res, engine.Last())
}

func TestEngine_Sync_RejectedEntryDoesNotBlockOthers(t *testing.T) {
	store := localdb.NewTestStore(t)
	remote := &fakeAuthority{reject: map[string]error{
		"item-b": errors.New("remote rejected: 422"),
	}}
	engine := NewEngine(store, remote, 0, testLogger())
	ctx := context.Background()

	enqueueItem(t, store, domain.OpCreate, pendingItem("item-a", 1))
	enqueueItem(t, store, domain.OpCreate, pendingItem("item-b", 2))
	enqueueItem(t, store, domain.OpCreate, pendingItem("item-c", 3))

	res, err := engine.Sync(ctx)
	require.NoError(t, err)

	// The rejection is isolated: the cycle still completes and the entries
	// around the bad one are applied and removed.
	require.True(t, res.OK())
	assert.Equal(t, 2, res.Drained)
	assert.Equal(t, 1, res.DrainFailed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "item-b")

	assert.Equal(t, []string{"create-item:item-a", "create-item:item-c"}, remote.recorded())

	ops, err := store.Pending().Drain(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "item-b", ops[0].TargetID())
	assert.Equal(t, 1, ops[0].Retries)
	assert.Contains(t, ops[0].LastError, "422")

	failed, err := store.Items().Get(ctx, "item-b")
	require.NoError(t, err)
	require.NotNil(t, failed)
	assert.Equal(t, domain.SyncFailed, failed.SyncStatus)
}

func TestEngine_Sync_UnavailableAbortsCycle(t *testing.T) {
	store := localdb.NewTestStore(t)
	remote := &fakeAuthority{unavailable: true}
	engine := NewEngine(store, remote, 0, testLogger())
	ctx := context.Background()

	enqueueItem(t, store, domain.OpCreate, pendingItem("item-a", 1))
	enqueueItem(t, store, domain.OpCreate, pendingItem("item-b", 2))

	res, err := engine.Sync(ctx)
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Equal(t, StageError, res.Stage)
	assert.Equal(t, 0, res.Drained)

	// The whole queue survives for the next cycle.
	count, cerr := store.Pending().Count(ctx)
	require.NoError(t, cerr)
	assert.EqualValues(t, 2, count)

	// No sync time is recorded for a failed cycle.
	settings, serr := store.Settings().Get(ctx)
	require.NoError(t, serr)
	assert.Nil(t, settings.LastSyncAt)
}

func TestEngine_Sync_PullOverwritesLocalCopy(t *testing.T) {
	store := localdb.NewTestStore(t)
	ctx := context.Background()

	local := pendingItem("item-a", 50)
	require.NoError(t, store.Items().Put(ctx, local))

	canonical := *pendingItem("item-a", 12)
	canonical.Name = "Item item-a (renamed upstream)"
	remote := &fakeAuthority{
		pullItems: []domain.Item{canonical},
		pullTxs: []domain.Transaction{{
			ID: "tx-remote", ItemID: "item-a", Direction: domain.DirectionIn,
			Quantity: 12, OccurredAt: time.Now().UTC(),
		}},
	}
	engine := NewEngine(store, remote, 0, testLogger())

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, 1, res.PulledItems)
	assert.Equal(t, 1, res.PulledTransactions)

	// Remote data wins wholesale, even over a local edit that was never
	// drained. This is the documented conflict policy.
	got, err := store.Items().Get(ctx, "item-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 12, got.Quantity)
	assert.Equal(t, "Item item-a (renamed upstream)", got.Name)
	assert.Equal(t, domain.SyncSynced, got.SyncStatus)

	tx, err := store.Transactions().Get(ctx, "tx-remote")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, domain.SyncSynced, tx.SyncStatus)
}

func TestEngine_Sync_ReplayIsIdempotent(t *testing.T) {
	store := localdb.NewTestStore(t)
	remote := &fakeAuthority{}
	engine := NewEngine(store, remote, 0, testLogger())
	ctx := context.Background()

	item := pendingItem("item-a", 5)
	enqueueItem(t, store, domain.OpCreate, item)

	// Deleting something the remote never saw is confirmed, not an error.
	_, err := store.Pending().Enqueue(ctx, domain.OpDelete, domain.EntityItem,
		&domain.Item{ID: "item-gone"})
	require.NoError(t, err)

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, 2, res.Drained)

	count, err := store.Pending().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestEngine_Sync_ConcurrentTriggersCoalesce(t *testing.T) {
	store := localdb.NewTestStore(t)
	gate := make(chan struct{})
	remote := &fakeAuthority{pullGate: gate, pullStarted: make(chan struct{}, 1)}
	engine := NewEngine(store, remote, 0, testLogger())
	ctx := context.Background()

	done := make(chan *Result, 1)
	go func() {
		res, err := engine.Sync(ctx)
		if err != nil {
			done <- nil
			return
		}
		done <- res
	}()

	// Wait until the first cycle is parked inside the pull stage, then hit
	// the engine again.
	<-remote.pullStarted
	_, err := engine.Sync(ctx)
	require.ErrorIs(t, err, ErrSyncInProgress)

	close(gate)

	res := <-done
	require.NotNil(t, res)
	assert.True(t, res.OK())

	// With the first cycle finished the engine accepts triggers again.
	res, err = engine.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestEngine_Last_NilBeforeFirstCycle(t *testing.T) {
	store := localdb.NewTestStore(t)
	engine := NewEngine(store, &fakeAuthority{}, 0, testLogger())
	assert.Nil(t, engine.Last())
}
