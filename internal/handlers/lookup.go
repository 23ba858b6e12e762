// internal/handlers/lookup.go
package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// maxImagePayload bounds the size of uploaded recognition images.
const maxImagePayload = 8 << 20 // 8 MB

// LookupHandler proxies barcode and image recognition requests to the
// external lookup collaborator. A not-found lookup is a 200 with an unknown
// suggestion, never a 404; the UI prefills what it can and asks the user for
// the rest.
type LookupHandler struct {
	lookup ports.LookupService
	logger *slog.Logger
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(lookup ports.LookupService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{
		lookup: lookup,
		logger: logger.With(slog.String("handler", "lookup")),
	}
}

// Barcode handles GET /api/v1/lookup/barcode/{code}
func (h *LookupHandler) Barcode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	suggestion, err := h.lookup.Barcode(ctx, code)
	if err != nil {
		h.logger.ErrorContext(ctx, "barcode lookup failed",
			slog.String("barcode", code),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

// Image handles POST /api/v1/lookup/image
func (h *LookupHandler) Image(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImagePayload))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read image payload")
		return
	}
	if len(payload) == 0 {
		respondError(w, http.StatusBadRequest, "Image payload is empty")
		return
	}

	suggestion, err := h.lookup.Image(ctx, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "image lookup failed",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}
