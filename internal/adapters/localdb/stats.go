// internal/adapters/localdb/stats.go
package localdb

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// LocalStats aggregates dashboard figures from the local replica. These are
// fallback figures: the replica only holds a windowed transaction history,
// so the remote authority's /stats endpoint stays canonical when reachable.
func (s *Store) LocalStats(ctx context.Context, org domain.OrgID) (*domain.Stats, error) {
	stats := &domain.Stats{
		Source:     domain.StatsLocal,
		ComputedAt: time.Now().UTC(),
	}

	itemsQB := squirrel.Select(
		"COUNT(*)",
		"COALESCE(SUM(quantity), 0)",
		"COALESCE(SUM(CASE WHEN min_stock > 0 AND quantity <= min_stock THEN 1 ELSE 0 END), 0)",
	).From("items")
	if org.Scoped() {
		itemsQB = itemsQB.Where(squirrel.Eq{"org_id": org.Normalize()})
	}

	query, args, err := itemsQB.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building stats query: %w", err)
	}
	err = s.q.QueryRowContext(ctx, query, args...).
		Scan(&stats.TotalItems, &stats.TotalQuantity, &stats.LowStock)
	if err != nil {
		return nil, fmt.Errorf("aggregating item stats: %w", err)
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	todayQB := squirrel.Select("direction", "COALESCE(SUM(quantity), 0)").
		From("transactions").
		Where(squirrel.GtOrEq{"occurred_at": startOfDay}).
		GroupBy("direction")
	if org.Scoped() {
		todayQB = todayQB.Where(squirrel.Eq{"org_id": org.Normalize()})
	}

	query, args, err = todayQB.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building today query: %w", err)
	}
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregating today's movements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var direction domain.Direction
		var total int64
		if err := rows.Scan(&direction, &total); err != nil {
			return nil, fmt.Errorf("scanning movement total: %w", err)
		}
		switch direction {
		case domain.DirectionIn:
			stats.TodayIn = total
		case domain.DirectionOut:
			stats.TodayOut = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	categoryQB := squirrel.Select("category", "COUNT(*)", "COALESCE(SUM(quantity), 0)").
		From("items").
		GroupBy("category").
		OrderBy("COUNT(*) DESC")
	if org.Scoped() {
		categoryQB = categoryQB.Where(squirrel.Eq{"org_id": org.Normalize()})
	}

	query, args, err = categoryQB.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building category query: %w", err)
	}
	catRows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregating category breakdown: %w", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var cc domain.CategoryCount
		if err := catRows.Scan(&cc.Category, &cc.Items, &cc.Quantity); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	return stats, catRows.Err()
}
