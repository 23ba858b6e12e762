// internal/adapters/localdb/transaction_store_test.go
package localdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

func testTransaction(id, itemID string, occurredAt time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:         id,
		ItemID:     itemID,
		Direction:  domain.DirectionIn,
		Quantity:   3,
		Reason:     domain.ReasonDonation,
		OccurredAt: occurredAt,
		OrgID:      "org-1",
	}
}

func TestTransactionStore_PutIsImmutable(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	tx := testTransaction("tx-1", "item-1", time.Now().UTC())
	require.NoError(t, store.Transactions().Put(ctx, tx))

	// Re-inserting the same id only refreshes the replication state; the
	// recorded movement never changes.
	replay := testTransaction("tx-1", "item-1", tx.OccurredAt)
	replay.Quantity = 99
	require.NoError(t, store.Transactions().PutSynced(ctx, replay))

	got, err := store.Transactions().Get(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, domain.SyncSynced, got.SyncStatus)
}

func TestTransactionStore_GetMissing(t *testing.T) {
	store := NewTestStore(t)

	got, err := store.Transactions().Get(context.Background(), "no-such-tx")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransactionStore_ListByItem(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, store.Transactions().Put(ctx, testTransaction("tx-1", "item-1", base.Add(-2*time.Hour))))
	require.NoError(t, store.Transactions().Put(ctx, testTransaction("tx-2", "item-1", base)))
	require.NoError(t, store.Transactions().Put(ctx, testTransaction("tx-3", "item-2", base)))

	txs, err := store.Transactions().ListByItem(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-2", txs[0].ID)
	assert.Equal(t, "tx-1", txs[1].ID)
}

func TestTransactionStore_ListRecent(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"tx-1", "tx-2", "tx-3"} {
		tx := testTransaction(id, "item-1", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Transactions().Put(ctx, tx))
	}

	txs, err := store.Transactions().ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-3", txs[0].ID)
	assert.Equal(t, "tx-2", txs[1].ID)
}

func TestTransactionStore_SetSyncStatus(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Transactions().Put(ctx, testTransaction("tx-1", "item-1", time.Now().UTC())))
	require.NoError(t, store.Transactions().SetSyncStatus(ctx, "tx-1", domain.SyncFailed))

	got, err := store.Transactions().Get(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.SyncFailed, got.SyncStatus)
}

func TestTransactionStore_DeleteByItem(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.Transactions().Put(ctx, testTransaction("tx-1", "item-1", now)))
	require.NoError(t, store.Transactions().Put(ctx, testTransaction("tx-2", "item-1", now)))
	require.NoError(t, store.Transactions().Put(ctx, testTransaction("tx-3", "item-2", now)))

	require.NoError(t, store.Transactions().DeleteByItem(ctx, "item-1"))

	count, err := store.Transactions().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	survivor, err := store.Transactions().Get(ctx, "tx-3")
	require.NoError(t, err)
	assert.NotNil(t, survivor)
}
