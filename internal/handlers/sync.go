// internal/handlers/sync.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pklemenc/shelfsync/internal/core/ports"
	"github.com/pklemenc/shelfsync/internal/syncer"
)

// SyncEngine is the slice of the sync engine the handler needs.
type SyncEngine interface {
	Sync(ctx context.Context) (*syncer.Result, error)
	Last() *syncer.Result
}

// SyncHandler exposes manual sync triggering and the sync status indicators
// the UI renders: pending count, last sync time, connectivity, last errors.
type SyncHandler struct {
	engine  SyncEngine
	store   ports.Store
	monitor ports.ConnectivityMonitor
	logger  *slog.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(engine SyncEngine, store ports.Store, monitor ports.ConnectivityMonitor, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		engine:  engine,
		store:   store,
		monitor: monitor,
		logger:  logger.With(slog.String("handler", "sync")),
	}
}

// Trigger handles POST /api/v1/sync
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.engine.Sync(ctx)
	if err != nil {
		if errors.Is(err, syncer.ErrSyncInProgress) {
			respondError(w, http.StatusConflict, "Sync already in progress")
			return
		}
		h.logger.ErrorContext(ctx, "failed to trigger sync",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to trigger sync")
		return
	}

	status := http.StatusOK
	if !res.OK() {
		// The cycle ran but did not reconcile; the result says why.
		status = http.StatusBadGateway
	}
	respondJSON(w, status, res)
}

// SyncStatusResponse is the status payload the UI polls.
type SyncStatusResponse struct {
	Online       bool           `json:"online"`
	PendingCount int64          `json:"pending_count"`
	LastSyncAt   *time.Time     `json:"last_sync_at,omitempty"`
	LastResult   *syncer.Result `json:"last_result,omitempty"`
}

// Status handles GET /api/v1/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pending, err := h.store.Pending().Count(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count pending operations",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	settings, err := h.store.Settings().Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read settings",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	respondJSON(w, http.StatusOK, SyncStatusResponse{
		Online:       h.monitor.Online(),
		PendingCount: pending,
		LastSyncAt:   settings.LastSyncAt,
		LastResult:   h.engine.Last(),
	})
}
