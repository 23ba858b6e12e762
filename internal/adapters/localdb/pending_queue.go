// internal/adapters/localdb/pending_queue.go
package localdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// pendingQueue implements ports.PendingQueue
type pendingQueue struct {
	q      querier
	logger *slog.Logger
}

// Enqueue appends a replication intent with a fresh identifier and the
// current timestamp. The payload is the full record snapshot.
func (s *pendingQueue) Enqueue(ctx context.Context, op domain.OpKind, entity domain.EntityKind, payload any) (*domain.PendingOperation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling pending payload: %w", err)
	}

	entry := &domain.PendingOperation{
		ID:        uuid.New().String(),
		Op:        op,
		Entity:    entity,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO pending_operations (id, op, entity, payload, created_at, retries, last_error)
		VALUES (?, ?, ?, ?, ?, 0, '')`,
		entry.ID, entry.Op, entry.Entity, string(entry.Payload), entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueueing pending operation: %w", err)
	}

	s.logger.DebugContext(ctx, "pending operation enqueued",
		slog.String("id", entry.ID),
		slog.String("op", string(op)),
		slog.String("entity", string(entity)))

	return entry, nil
}

// Drain returns all entries ordered by creation time. The rowid tie-break
// keeps entries created within the same timestamp in insertion order, so
// replay never reorders operations against the same entity.
func (s *pendingQueue) Drain(ctx context.Context) ([]domain.PendingOperation, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, op, entity, payload, created_at, retries, last_error
		FROM pending_operations
		ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("draining pending operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.PendingOperation
	for rows.Next() {
		var entry domain.PendingOperation
		var payload string
		if err := rows.Scan(&entry.ID, &entry.Op, &entry.Entity, &payload,
			&entry.CreatedAt, &entry.Retries, &entry.LastError); err != nil {
			return nil, fmt.Errorf("scanning pending operation: %w", err)
		}
		entry.Payload = json.RawMessage(payload)
		ops = append(ops, entry)
	}
	return ops, rows.Err()
}

// Remove deletes a single entry after confirmed remote application. Removing
// an already removed entry is not an error; replay is idempotent.
func (s *pendingQueue) Remove(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx,
		`DELETE FROM pending_operations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing pending operation: %w", err)
	}
	return nil
}

// Bump increments the retry counter and records the most recent replay
// error. Entries are retried every cycle; there is no cap and no backoff.
func (s *pendingQueue) Bump(ctx context.Context, id string, lastError string) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE pending_operations
		SET retries = retries + 1, last_error = ?
		WHERE id = ?`, lastError, id)
	if err != nil {
		return fmt.Errorf("recording pending operation failure: %w", err)
	}
	return nil
}

// Count returns the number of queued entries.
func (s *pendingQueue) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_operations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pending operations: %w", err)
	}
	return count, nil
}
