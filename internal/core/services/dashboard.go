// internal/core/services/dashboard.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// DashboardService assembles summary statistics. It prefers the remote
// authority's aggregates and falls back to locally computed ones when the
// remote cannot serve them; the result is tagged with its source so the
// caller can tell a possibly stale local view from the canonical one.
type DashboardService struct {
	store  ports.Store
	remote ports.RemoteAuthority
	logger *slog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store ports.Store, remote ports.RemoteAuthority, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		remote: remote,
		logger: logger.With(slog.String("service", "dashboard")),
	}
}

// Stats returns summary statistics scoped to the organization.
func (s *DashboardService) Stats(ctx context.Context, org domain.OrgID) (*domain.Stats, error) {
	stats, err := s.remote.Stats(ctx, org)
	if err == nil {
		return stats, nil
	}

	s.logger.DebugContext(ctx, "remote stats unavailable, computing locally",
		slog.String("error", err.Error()))

	stats, err = s.store.LocalStats(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// LowStockItems returns the items at or below their minimum stock level.
func (s *DashboardService) LowStockItems(ctx context.Context, org domain.OrgID) ([]domain.Item, error) {
	items, err := s.store.Items().List(ctx, ports.ItemFilter{Org: org, LowStock: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}
	return items, nil
}
