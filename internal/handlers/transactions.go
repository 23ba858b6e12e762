// internal/handlers/transactions.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// TransactionService is the slice of the inventory service the transaction
// handler needs.
type TransactionService interface {
	RecordTransaction(ctx context.Context, t *domain.Transaction) error
	ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	service TransactionService
	logger  *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "transactions")),
	}
}

// Create handles POST /api/v1/transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := req.ToDomain()

	if err := h.service.RecordTransaction(ctx, t); err != nil {
		h.logger.ErrorContext(ctx, "failed to record transaction",
			slog.String("item_id", t.ItemID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// List handles GET /api/v1/transactions
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			if v > 500 {
				v = 500
			}
			limit = v
		}
	}

	txs, err := h.service.ListRecentTransactions(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list transactions",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// TransactionRequest represents the request body for recording a transaction
type TransactionRequest struct {
	ItemID      string `json:"item_id"`
	Direction   string `json:"direction"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	PerformedBy string `json:"performed_by,omitempty"`
	Notes       string `json:"notes,omitempty"`
	OrgID       string `json:"org_id,omitempty"`
}

// Validate validates the transaction request
func (r *TransactionRequest) Validate() error {
	if r.ItemID == "" {
		return fmt.Errorf("item_id is required")
	}
	if r.Direction != string(domain.DirectionIn) && r.Direction != string(domain.DirectionOut) {
		return fmt.Errorf("direction must be %q or %q", domain.DirectionIn, domain.DirectionOut)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *TransactionRequest) ToDomain() *domain.Transaction {
	t := &domain.Transaction{
		ItemID:      r.ItemID,
		Direction:   domain.Direction(r.Direction),
		Quantity:    r.Quantity,
		Reason:      domain.Reason(r.Reason),
		Recipient:   r.Recipient,
		PerformedBy: r.PerformedBy,
		Notes:       r.Notes,
		OrgID:       domain.OrgID(r.OrgID).Normalize(),
	}

	if t.Reason == "" {
		t.Reason = domain.ReasonOther
	}

	return t
}
