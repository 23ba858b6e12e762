// internal/adapters/localdb/schema_test.go
package localdb

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

func TestMigrate_Idempotent(t *testing.T) {
	db, err := openDB(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

// A database created before image_ref and last_error existed must upgrade in
// place, with rows written by the old binary still readable afterwards.
func TestMigrate_UpgradesLegacyDatabase(t *testing.T) {
	db, err := openDB(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	legacy := []string{
		`CREATE TABLE items (
			id          TEXT PRIMARY KEY,
			barcode     TEXT NOT NULL DEFAULT '',
			name        TEXT NOT NULL,
			category    TEXT NOT NULL DEFAULT 'other',
			quantity    INTEGER NOT NULL DEFAULT 0,
			unit        TEXT NOT NULL DEFAULT 'pcs',
			condition   TEXT NOT NULL DEFAULT 'unknown',
			min_stock   INTEGER NOT NULL DEFAULT 0,
			location    TEXT NOT NULL DEFAULT '',
			notes       TEXT NOT NULL DEFAULT '',
			org_id      TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL,
			sync_status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE TABLE pending_operations (
			id         TEXT PRIMARY KEY,
			op         TEXT NOT NULL,
			entity     TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			retries    INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range legacy {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	_, err = db.Exec(`
		INSERT INTO items (id, name, created_at, updated_at)
		VALUES ('item-legacy', 'Blanket', ?, ?)`, now, now)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO pending_operations (id, op, entity, payload, created_at)
		VALUES ('op-legacy', 'create', 'item', '{"id":"item-legacy"}', ?)`, now)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	store := NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	item, err := store.Items().Get(ctx, "item-legacy")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Blanket", item.Name)
	assert.Empty(t, item.ImageRef)

	ops, err := store.Pending().Drain(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "op-legacy", ops[0].ID)
	assert.Empty(t, ops[0].LastError)

	// Writes through the new columns work after the upgrade.
	item.ImageRef = "images/blanket.jpg"
	require.NoError(t, store.Items().Put(ctx, item))
	require.NoError(t, store.Pending().Bump(ctx, "op-legacy", "remote rejected: 422"))

	got, err := store.Items().Get(ctx, "item-legacy")
	require.NoError(t, err)
	assert.Equal(t, "images/blanket.jpg", got.ImageRef)
}

func TestMigrate_FreshDatabaseEnforcesChecks(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	// The transactions table rejects directions and quantities the domain
	// layer would never produce.
	bad := &domain.Transaction{
		ID: "tx-1", ItemID: "item-1", Direction: "sideways", Quantity: 1,
		OccurredAt: time.Now().UTC(),
	}
	require.Error(t, store.Transactions().Put(ctx, bad))

	zero := &domain.Transaction{
		ID: "tx-2", ItemID: "item-1", Direction: domain.DirectionIn, Quantity: 0,
		OccurredAt: time.Now().UTC(),
	}
	require.Error(t, store.Transactions().Put(ctx, zero))
}
