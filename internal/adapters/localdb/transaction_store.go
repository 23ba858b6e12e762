// internal/adapters/localdb/transaction_store.go
package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// transactionStore implements ports.TransactionStore
type transactionStore struct {
	q      querier
	logger *slog.Logger
}

const transactionUpsert = `
	INSERT INTO transactions (
		id, item_id, direction, quantity, reason, recipient,
		performed_by, occurred_at, notes, org_id, sync_status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		sync_status = excluded.sync_status`

// Put inserts a transaction in pending sync status. Transactions are
// immutable, so a conflicting id only refreshes the replication state.
func (s *transactionStore) Put(ctx context.Context, t *domain.Transaction) error {
	return s.put(ctx, t, domain.SyncPending)
}

// PutSynced inserts a transaction as already replicated. Reserved for the
// pull-merge path.
func (s *transactionStore) PutSynced(ctx context.Context, t *domain.Transaction) error {
	return s.put(ctx, t, domain.SyncSynced)
}

func (s *transactionStore) put(ctx context.Context, t *domain.Transaction, status domain.SyncStatus) error {
	t.SyncStatus = status

	_, err := s.q.ExecContext(ctx, transactionUpsert,
		t.ID, t.ItemID, t.Direction, t.Quantity, t.Reason, t.Recipient,
		t.PerformedBy, t.OccurredAt, t.Notes, t.OrgID.Normalize(), t.SyncStatus,
	)
	if err != nil {
		return fmt.Errorf("saving transaction: %w", err)
	}

	s.logger.DebugContext(ctx, "transaction saved",
		slog.String("id", t.ID),
		slog.String("item_id", t.ItemID),
		slog.String("direction", string(t.Direction)))

	return nil
}

// Get returns a transaction by id, or nil when it does not exist.
func (s *transactionStore) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, item_id, direction, quantity, reason, recipient,
		       performed_by, occurred_at, notes, org_id, sync_status
		FROM transactions WHERE id = ?`, id)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return t, nil
}

// ListByItem returns all transactions referencing an item, newest first.
func (s *transactionStore) ListByItem(ctx context.Context, itemID string) ([]domain.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, item_id, direction, quantity, reason, recipient,
		       performed_by, occurred_at, notes, org_id, sync_status
		FROM transactions WHERE item_id = ?
		ORDER BY occurred_at DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions by item: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListRecent returns the most recent transactions, capped at limit.
func (s *transactionStore) ListRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, item_id, direction, quantity, reason, recipient,
		       performed_by, occurred_at, notes, org_id, sync_status
		FROM transactions
		ORDER BY occurred_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// SetSyncStatus flips the replication state.
func (s *transactionStore) SetSyncStatus(ctx context.Context, id string, status domain.SyncStatus) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("setting transaction sync status: %w", err)
	}
	return nil
}

// DeleteByItem removes every transaction referencing an item. Used for the
// local side of the item-delete cascade; the remote cascades on its own.
func (s *transactionStore) DeleteByItem(ctx context.Context, itemID string) error {
	_, err := s.q.ExecContext(ctx,
		`DELETE FROM transactions WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting transactions for item: %w", err)
	}
	return nil
}

// Count returns the total number of transactions.
func (s *transactionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.ItemID, &t.Direction, &t.Quantity, &t.Reason, &t.Recipient,
		&t.PerformedBy, &t.OccurredAt, &t.Notes, &t.OrgID, &t.SyncStatus,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
