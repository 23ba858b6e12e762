// internal/handlers/items.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// ItemService is the slice of the inventory service the item handler needs.
type ItemService interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	UpdateItem(ctx context.Context, id string, item *domain.Item) error
	DeleteItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	GetItemByBarcode(ctx context.Context, barcode string, org domain.OrgID) (*domain.Item, error)
	ListItems(ctx context.Context, filter ports.ItemFilter) ([]domain.Item, error)
	ListItemTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error)
}

// ItemHandler handles item-related HTTP requests
type ItemHandler struct {
	service ItemService
	logger  *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(service ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "items")),
	}
}

// Get handles GET /api/v1/items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	item, err := h.service.GetItem(ctx, id)
	if err != nil {
		if isNotFound(err, id) {
			respondError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get item",
			slog.String("id", id),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// GetByBarcode handles GET /api/v1/items/barcode/{code}
func (h *ItemHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")
	org := domain.OrgID(r.URL.Query().Get("org_id")).Normalize()

	item, err := h.service.GetItemByBarcode(ctx, code, org)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get item by barcode",
			slog.String("barcode", code),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve item")
		return
	}
	if item == nil {
		respondError(w, http.StatusNotFound, "No item with this barcode")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// List handles GET /api/v1/items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := h.parseListFilter(r)

	items, err := h.service.ListItems(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list items",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// Create handles POST /api/v1/items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := req.ToDomain()

	if err := h.service.CreateItem(ctx, item); err != nil {
		h.logger.ErrorContext(ctx, "failed to create item",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/v1/items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := req.ToDomain()

	if err := h.service.UpdateItem(ctx, id, item); err != nil {
		if isNotFound(err, id) {
			respondError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update item",
			slog.String("id", id),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to update item")
		return
	}

	updated, err := h.service.GetItem(ctx, id)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Item updated successfully"})
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := h.service.DeleteItem(ctx, id); err != nil {
		if isNotFound(err, id) {
			respondError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete item",
			slog.String("id", id),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Item deleted successfully",
		"id":      id,
	})
}

// Transactions handles GET /api/v1/items/{id}/transactions
func (h *ItemHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	txs, err := h.service.ListItemTransactions(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list item transactions",
			slog.String("id", id),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// parseListFilter parses query parameters for listing items
func (h *ItemHandler) parseListFilter(r *http.Request) ports.ItemFilter {
	filter := ports.ItemFilter{
		SortBy:    "updated_at",
		SortOrder: "desc",
		Limit:     50,
	}

	q := r.URL.Query()

	filter.Search = q.Get("search")
	filter.Category = domain.ItemCategory(q.Get("category"))
	filter.Org = domain.OrgID(q.Get("org_id")).Normalize()
	filter.LowStock = q.Get("low_stock") == "true"

	if limit := q.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 500 {
				l = 500
			}
			filter.Limit = l
		}
	}
	if offset := q.Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	if sortBy := q.Get("sort"); sortBy != "" {
		filter.SortBy = sortBy
	}
	if order := q.Get("order"); order == "asc" || order == "desc" {
		filter.SortOrder = order
	}

	return filter
}

func isNotFound(err error, id string) bool {
	return strings.HasSuffix(err.Error(), "not found: "+id)
}

// ItemRequest represents the request body for creating or updating an item
type ItemRequest struct {
	Barcode   string `json:"barcode,omitempty"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Quantity  int    `json:"quantity"`
	Unit      string `json:"unit,omitempty"`
	Condition string `json:"condition,omitempty"`
	MinStock  int    `json:"min_stock,omitempty"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	ImageRef  string `json:"image_ref,omitempty"`
	OrgID     string `json:"org_id,omitempty"`
}

// Validate validates the item request
func (r *ItemRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if r.MinStock < 0 {
		return fmt.Errorf("min_stock cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *ItemRequest) ToDomain() *domain.Item {
	item := &domain.Item{
		Barcode:   r.Barcode,
		Name:      r.Name,
		Category:  domain.ItemCategory(r.Category),
		Quantity:  r.Quantity,
		Unit:      r.Unit,
		Condition: domain.ItemCondition(r.Condition),
		MinStock:  r.MinStock,
		Location:  r.Location,
		Notes:     r.Notes,
		ImageRef:  r.ImageRef,
		OrgID:     domain.OrgID(r.OrgID).Normalize(),
	}

	if item.Category == "" {
		item.Category = domain.CategoryOther
	}
	if item.Condition == "" {
		item.Condition = domain.ConditionUnknown
	}

	return item
}
