// internal/handlers/dashboard.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// StatsService is the slice of the dashboard service the handler needs.
type StatsService interface {
	Stats(ctx context.Context, org domain.OrgID) (*domain.Stats, error)
	LowStockItems(ctx context.Context, org domain.OrgID) ([]domain.Item, error)
}

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	service StatsService
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service StatsService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "dashboard")),
	}
}

// Stats handles GET /api/v1/dashboard
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org := domain.OrgID(r.URL.Query().Get("org_id")).Normalize()

	stats, err := h.service.Stats(ctx, org)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute dashboard stats",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// LowStock handles GET /api/v1/dashboard/low-stock
func (h *DashboardHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org := domain.OrgID(r.URL.Query().Get("org_id")).Normalize()

	items, err := h.service.LowStockItems(ctx, org)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list low stock items",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list low stock items")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}
