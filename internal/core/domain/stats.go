// internal/core/domain/stats.go
package domain

import "time"

// StatsSource identifies where dashboard figures were computed.
type StatsSource string

const (
	// StatsRemote means the figures come from the remote authority's
	// canonical dataset.
	StatsRemote StatsSource = "remote"
	// StatsLocal means the figures were aggregated from the local replica,
	// which only holds a windowed transaction history.
	StatsLocal StatsSource = "local"
)

// CategoryCount is a per-category slice of the dashboard breakdown.
type CategoryCount struct {
	Category ItemCategory `json:"category"`
	Items    int64        `json:"items"`
	Quantity int64        `json:"quantity"`
}

// Stats holds aggregate dashboard figures.
type Stats struct {
	TotalItems    int64           `json:"total_items"`
	TotalQuantity int64           `json:"total_quantity"`
	LowStock      int64           `json:"low_stock"`
	TodayIn       int64           `json:"today_in"`
	TodayOut      int64           `json:"today_out"`
	ByCategory    []CategoryCount `json:"by_category"`
	Source        StatsSource     `json:"source"`
	ComputedAt    time.Time       `json:"computed_at"`
}
