// internal/syncer/engine.go
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// ErrSyncInProgress is returned when a sync trigger arrives while a cycle is
// already running. Triggers coalesce; they are never queued.
var ErrSyncInProgress = errors.New("sync cycle already in progress")

// DefaultPullWindow caps how many recent transactions a pull fetches.
const DefaultPullWindow = 200

// Engine orchestrates one sync cycle: drain the pending queue against the
// remote authority, pull the canonical snapshot, record the sync time.
// Outbound replication always runs before inbound replication, which narrows
// but does not close the window in which a pull can overwrite a local edit
// that was not drained yet.
type Engine struct {
	store      ports.Store
	remote     ports.RemoteAuthority
	logger     *slog.Logger
	pullWindow int

	running atomic.Bool

	mu   sync.Mutex
	last *Result
}

// NewEngine creates a synchronization engine.
func NewEngine(store ports.Store, remote ports.RemoteAuthority, pullWindow int, logger *slog.Logger) *Engine {
	if pullWindow <= 0 {
		pullWindow = DefaultPullWindow
	}
	return &Engine{
		store:      store,
		remote:     remote,
		pullWindow: pullWindow,
		logger:     logger.With(slog.String("component", "syncer")),
	}
}

// Sync runs one full cycle. Concurrent calls coalesce: the second caller
// gets ErrSyncInProgress and no work happens twice. A cycle failure is
// reported inside the result, not as a returned error.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer e.running.Store(false)

	res := &Result{Stage: StageDraining, StartedAt: time.Now().UTC()}
	e.logger.InfoContext(ctx, "sync cycle started")

	if err := e.drain(ctx, res); err != nil {
		res.fail(err)
		e.finish(ctx, res)
		return res, nil
	}

	res.Stage = StagePulling
	if err := e.pull(ctx, res); err != nil {
		res.fail(err)
		e.finish(ctx, res)
		return res, nil
	}

	if err := e.recordSyncTime(ctx); err != nil {
		res.fail(err)
		e.finish(ctx, res)
		return res, nil
	}

	res.Stage = StageReconciled
	e.finish(ctx, res)
	return res, nil
}

// Last returns the result of the most recent cycle, or nil before the first
// one.
func (e *Engine) Last() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *Engine) finish(ctx context.Context, res *Result) {
	res.FinishedAt = time.Now().UTC()

	e.mu.Lock()
	e.last = res
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "sync cycle finished",
		slog.String("stage", string(res.Stage)),
		slog.Int("drained", res.Drained),
		slog.Int("drain_failed", res.DrainFailed),
		slog.Int("pulled_items", res.PulledItems),
		slog.Int("pulled_transactions", res.PulledTransactions),
		slog.Int("errors", len(res.Errors)))
}

// drain replays every queued operation in creation order. A rejected entry
// is skipped and retried next cycle; it never blocks the entries behind it.
// Only a connectivity-class failure aborts the stage.
func (e *Engine) drain(ctx context.Context, res *Result) error {
	ops, err := e.store.Pending().Drain(ctx)
	if err != nil {
		return fmt.Errorf("reading pending queue: %w", err)
	}

	for i := range ops {
		op := &ops[i]

		err := e.replay(ctx, op)
		if err == nil {
			if err := e.store.Pending().Remove(ctx, op.ID); err != nil {
				return fmt.Errorf("removing replayed operation: %w", err)
			}
			e.setSyncStatus(ctx, op, domain.SyncSynced)
			res.Drained++
			continue
		}

		if errors.Is(err, ports.ErrRemoteUnavailable) {
			return fmt.Errorf("draining aborted: %w", err)
		}

		res.DrainFailed++
		res.Errors = append(res.Errors,
			fmt.Sprintf("%s %s %s: %v", op.Op, op.Entity, op.TargetID(), err))

		if bumpErr := e.store.Pending().Bump(ctx, op.ID, err.Error()); bumpErr != nil {
			e.logger.ErrorContext(ctx, "failed to record replay failure",
				slog.String("op_id", op.ID),
				slog.String("error", bumpErr.Error()))
		}
		e.setSyncStatus(ctx, op, domain.SyncFailed)

		e.logger.WarnContext(ctx, "pending operation rejected",
			slog.String("op_id", op.ID),
			slog.String("op", string(op.Op)),
			slog.String("entity", string(op.Entity)),
			slog.Int("retries", op.Retries+1),
			slog.String("error", err.Error()))
	}

	return nil
}

func (e *Engine) replay(ctx context.Context, op *domain.PendingOperation) error {
	switch op.Entity {
	case domain.EntityItem:
		return e.replayItem(ctx, op)
	case domain.EntityTransaction:
		return e.replayTransaction(ctx, op)
	default:
		return fmt.Errorf("unknown entity kind %q", op.Entity)
	}
}

func (e *Engine) replayItem(ctx context.Context, op *domain.PendingOperation) error {
	switch op.Op {
	case domain.OpDelete:
		return e.remote.DeleteItem(ctx, op.TargetID())
	case domain.OpCreate, domain.OpUpdate:
		var item domain.Item
		if err := json.Unmarshal(op.Payload, &item); err != nil {
			return fmt.Errorf("decoding item snapshot: %w", err)
		}
		if op.Op == domain.OpCreate {
			return e.remote.CreateItem(ctx, &item)
		}
		return e.remote.UpdateItem(ctx, &item)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Op)
	}
}

func (e *Engine) replayTransaction(ctx context.Context, op *domain.PendingOperation) error {
	switch op.Op {
	case domain.OpDelete:
		return e.remote.DeleteTransaction(ctx, op.TargetID())
	case domain.OpCreate:
		var t domain.Transaction
		if err := json.Unmarshal(op.Payload, &t); err != nil {
			return fmt.Errorf("decoding transaction snapshot: %w", err)
		}
		return e.remote.CreateTransaction(ctx, &t)
	default:
		// Transactions are immutable; an update op cannot exist.
		return fmt.Errorf("unsupported operation %q for transaction", op.Op)
	}
}

// setSyncStatus mirrors the replay outcome onto the local record. Deletes
// have no local record left to mark; a missing record is fine either way.
func (e *Engine) setSyncStatus(ctx context.Context, op *domain.PendingOperation, status domain.SyncStatus) {
	if op.Op == domain.OpDelete {
		return
	}

	var err error
	switch op.Entity {
	case domain.EntityItem:
		err = e.store.Items().SetSyncStatus(ctx, op.TargetID(), status)
	case domain.EntityTransaction:
		err = e.store.Transactions().SetSyncStatus(ctx, op.TargetID(), status)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to update sync status",
			slog.String("entity", string(op.Entity)),
			slog.String("id", op.TargetID()),
			slog.String("error", err.Error()))
	}
}

// pull overwrites local copies with the remote snapshot: the full item
// collection plus a capped window of recent transactions. Remote data wins
// wholesale; this is the documented conflict policy, not a field-level merge.
func (e *Engine) pull(ctx context.Context, res *Result) error {
	settings, err := e.store.Settings().Get(ctx)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	items, err := e.remote.ListItems(ctx, settings.OrgID)
	if err != nil {
		return fmt.Errorf("pulling items: %w", err)
	}
	for i := range items {
		if err := e.store.Items().PutSynced(ctx, &items[i]); err != nil {
			return fmt.Errorf("merging pulled item %s: %w", items[i].ID, err)
		}
		res.PulledItems++
	}

	txs, err := e.remote.ListTransactions(ctx, e.pullWindow)
	if err != nil {
		return fmt.Errorf("pulling transactions: %w", err)
	}
	for i := range txs {
		if err := e.store.Transactions().PutSynced(ctx, &txs[i]); err != nil {
			return fmt.Errorf("merging pulled transaction %s: %w", txs[i].ID, err)
		}
		res.PulledTransactions++
	}

	return nil
}

func (e *Engine) recordSyncTime(ctx context.Context) error {
	settings, err := e.store.Settings().Get(ctx)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	now := time.Now().UTC()
	settings.LastSyncAt = &now
	if err := e.store.Settings().Put(ctx, settings); err != nil {
		return fmt.Errorf("recording sync time: %w", err)
	}
	return nil
}
