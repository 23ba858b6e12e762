// internal/adapters/localdb/db_test.go
package localdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

func TestTransact_CommitsAllWrites(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	err := store.Transact(ctx, func(st ports.Store) error {
		if err := st.Items().Put(ctx, testItem("item-1", "Rice", "org-1")); err != nil {
			return err
		}
		_, err := st.Pending().Enqueue(ctx, domain.OpCreate, domain.EntityItem,
			&domain.Item{ID: "item-1"})
		return err
	})
	require.NoError(t, err)

	item, err := store.Items().Get(ctx, "item-1")
	require.NoError(t, err)
	assert.NotNil(t, item)

	count, err := store.Pending().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestTransact_RollsBackOnError(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transact(ctx, func(st ports.Store) error {
		if err := st.Items().Put(ctx, testItem("item-1", "Rice", "org-1")); err != nil {
			return err
		}
		if _, err := st.Pending().Enqueue(ctx, domain.OpCreate, domain.EntityItem,
			&domain.Item{ID: "item-1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Neither write survives the rollback.
	item, err := store.Items().Get(ctx, "item-1")
	require.NoError(t, err)
	assert.Nil(t, item)

	count, err := store.Pending().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestTransact_NestedCallReusesTransaction(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transact(ctx, func(st ports.Store) error {
		if err := st.Items().Put(ctx, testItem("item-1", "Rice", "org-1")); err != nil {
			return err
		}
		// The inner Transact runs in the surrounding transaction, so the
		// outer failure undoes its writes too.
		inner := st.Transact(ctx, func(st2 ports.Store) error {
			return st2.Items().Put(ctx, testItem("item-2", "Pasta", "org-1"))
		})
		if inner != nil {
			return inner
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := store.Items().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestStore_PropagatesQueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	dbErr := errors.New("database is locked")
	mock.ExpectQuery("FROM items").WillReturnError(dbErr)

	_, err = store.Items().Get(context.Background(), "item-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "getting item")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PropagatesExecErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	dbErr := errors.New("disk I/O error")
	mock.ExpectExec("INSERT INTO items").WillReturnError(dbErr)

	err = store.Items().Put(context.Background(), testItem("item-1", "Rice", "org-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "saving item")

	require.NoError(t, mock.ExpectationsWereMet())
}
