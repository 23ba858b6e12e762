// internal/core/domain/settings.go
package domain

import "time"

// AppSettings is the process-wide singleton local state. It is created with
// defaults on first store initialization and never deleted; Reset restores
// the defaults.
type AppSettings struct {
	Language       string     `json:"language"`
	Theme          string     `json:"theme"`
	LowStockAlerts bool       `json:"low_stock_alerts"`
	AutoSync       bool       `json:"auto_sync"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	OrgID          OrgID      `json:"org_id,omitempty"`
}

// DefaultSettings returns the settings written on first initialization.
func DefaultSettings() *AppSettings {
	return &AppSettings{
		Language:       "en",
		Theme:          "system",
		LowStockAlerts: true,
		AutoSync:       true,
		OrgID:          OrgAll,
	}
}
