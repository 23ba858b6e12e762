// internal/handlers/settings.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// SettingsHandler handles the app settings singleton.
type SettingsHandler struct {
	settings ports.SettingsStore
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings ports.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger.With(slog.String("handler", "settings")),
	}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read settings",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// SettingsRequest represents the request body for updating settings.
// LastSyncAt is owned by the sync engine and cannot be set here.
type SettingsRequest struct {
	Language       *string `json:"language,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	LowStockAlerts *bool   `json:"low_stock_alerts,omitempty"`
	AutoSync       *bool   `json:"auto_sync,omitempty"`
	OrgID          *string `json:"org_id,omitempty"`
}

// Update handles PUT /api/v1/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read settings",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}

	if req.Language != nil {
		settings.Language = *req.Language
	}
	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.LowStockAlerts != nil {
		settings.LowStockAlerts = *req.LowStockAlerts
	}
	if req.AutoSync != nil {
		settings.AutoSync = *req.AutoSync
	}
	if req.OrgID != nil {
		org := domain.OrgID(*req.OrgID)
		if !org.Valid() {
			respondError(w, http.StatusBadRequest, "Invalid org_id")
			return
		}
		settings.OrgID = org.Normalize()
	}

	if err := h.settings.Put(ctx, settings); err != nil {
		h.logger.ErrorContext(ctx, "failed to store settings",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to store settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// Reset handles POST /api/v1/settings/reset
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.settings.Reset(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reset settings",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to reset settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
