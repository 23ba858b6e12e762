// internal/handlers/organizations.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/services"
)

// OrgService is the slice of the organization service the handler needs.
type OrgService interface {
	List(ctx context.Context) ([]domain.Organization, error)
	Get(ctx context.Context, id string) (*domain.Organization, error)
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, id string, org *domain.Organization) error
	Delete(ctx context.Context, id string) error
}

// OrganizationHandler handles organization-related HTTP requests. Writes are
// online-only; an unreachable remote maps to 503.
type OrganizationHandler struct {
	service OrgService
	logger  *slog.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(service OrgService, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "organizations")),
	}
}

// List handles GET /api/v1/organizations
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgs, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list organizations",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list organizations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"organizations": orgs,
		"count":         len(orgs),
	})
}

// Get handles GET /api/v1/organizations/{id}
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	org, err := h.service.Get(ctx, id)
	if err != nil {
		if isNotFound(err, id) {
			respondError(w, http.StatusNotFound, "Organization not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get organization",
			slog.String("id", id),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve organization")
		return
	}

	respondJSON(w, http.StatusOK, org)
}

// Create handles POST /api/v1/organizations
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req OrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	org := req.ToDomain()

	if err := h.service.Create(ctx, org); err != nil {
		h.respondWriteError(ctx, w, "create", err)
		return
	}

	respondJSON(w, http.StatusCreated, org)
}

// Update handles PUT /api/v1/organizations/{id}
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req OrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	org := req.ToDomain()

	if err := h.service.Update(ctx, id, org); err != nil {
		h.respondWriteError(ctx, w, "update", err)
		return
	}

	respondJSON(w, http.StatusOK, org)
}

// Delete handles DELETE /api/v1/organizations/{id}
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := h.service.Delete(ctx, id); err != nil {
		h.respondWriteError(ctx, w, "delete", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Organization deleted successfully",
		"id":      id,
	})
}

func (h *OrganizationHandler) respondWriteError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if errors.Is(err, services.ErrOffline) {
		respondError(w, http.StatusServiceUnavailable, "Organization changes require connectivity")
		return
	}
	h.logger.ErrorContext(ctx, "organization write failed",
		slog.String("op", op),
		slog.String("error", err.Error()))
	respondError(w, http.StatusInternalServerError, "Failed to "+op+" organization")
}

// OrganizationRequest represents the request body for creating or updating an
// organization
type OrganizationRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Type         string `json:"type,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
	IsDefault    bool   `json:"is_default,omitempty"`
}

// Validate validates the organization request
func (r *OrganizationRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *OrganizationRequest) ToDomain() *domain.Organization {
	org := &domain.Organization{
		Name:         r.Name,
		Description:  r.Description,
		Type:         domain.OrgType(r.Type),
		Icon:         r.Icon,
		Color:        r.Color,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
		Address:      r.Address,
		IsDefault:    r.IsDefault,
	}

	if org.Type == "" {
		org.Type = domain.OrgTypeOtherNonprof
	}

	return org
}
