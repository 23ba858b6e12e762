// internal/adapters/localdb/settings_store.go
package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// settingsStore implements ports.SettingsStore. The settings collection is a
// singleton row.
type settingsStore struct {
	q      querier
	logger *slog.Logger
}

// Get returns the settings singleton, creating it with defaults on first
// access.
func (s *settingsStore) Get(ctx context.Context) (*domain.AppSettings, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT language, theme, low_stock_alerts, autosync, last_sync_at, org_id
		FROM settings WHERE id = 1`)

	settings := &domain.AppSettings{}
	var lastSync sql.NullTime
	err := row.Scan(&settings.Language, &settings.Theme, &settings.LowStockAlerts,
		&settings.AutoSync, &lastSync, &settings.OrgID)
	if err == sql.ErrNoRows {
		defaults := domain.DefaultSettings()
		if err := s.Put(ctx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	if lastSync.Valid {
		t := lastSync.Time
		settings.LastSyncAt = &t
	}
	return settings, nil
}

// Put replaces the settings singleton.
func (s *settingsStore) Put(ctx context.Context, settings *domain.AppSettings) error {
	var lastSync any
	if settings.LastSyncAt != nil {
		lastSync = *settings.LastSyncAt
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO settings (id, language, theme, low_stock_alerts, autosync, last_sync_at, org_id)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			language = excluded.language,
			theme = excluded.theme,
			low_stock_alerts = excluded.low_stock_alerts,
			autosync = excluded.autosync,
			last_sync_at = excluded.last_sync_at,
			org_id = excluded.org_id`,
		settings.Language, settings.Theme, settings.LowStockAlerts,
		settings.AutoSync, lastSync, settings.OrgID.Normalize(),
	)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	s.logger.DebugContext(ctx, "settings saved")
	return nil
}

// Reset restores the defaults. The singleton itself is never deleted.
func (s *settingsStore) Reset(ctx context.Context) (*domain.AppSettings, error) {
	defaults := domain.DefaultSettings()
	if err := s.Put(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
