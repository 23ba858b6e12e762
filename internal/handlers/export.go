// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// ExportHandler handles export operations against the local replica, so an
// export works offline and reflects exactly what the user sees.
type ExportHandler struct {
	store  ports.Store
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(store ports.Store, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		store:  store,
		logger: logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org := domain.OrgID(r.URL.Query().Get("org_id")).Normalize()

	items, err := h.store.Items().List(ctx, ports.ItemFilter{Org: org, SortBy: "name", SortOrder: "asc"})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load items for export",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	txs, err := h.store.Transactions().ListRecent(ctx, 1000)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load transactions for export",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(items, txs)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("inventory_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "excel export completed",
		slog.Int("items", len(items)),
		slog.Int("transactions", len(txs)))
}

// ExportJSON handles GET /api/v1/export/json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org := domain.OrgID(r.URL.Query().Get("org_id")).Normalize()

	items, err := h.store.Items().List(ctx, ports.ItemFilter{Org: org, SortBy: "name", SortOrder: "asc"})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load items for export",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	txs, err := h.store.Transactions().ListRecent(ctx, 1000)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load transactions for export",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":        items,
		"transactions": txs,
		"metadata": map[string]interface{}{
			"export_date":        time.Now().UTC(),
			"total_items":        len(items),
			"total_transactions": len(txs),
			"org_id":             org,
		},
	})
}

// generateExcelFile creates a two-sheet workbook: items and transactions.
func (h *ExportHandler) generateExcelFile(items []domain.Item, txs []domain.Transaction) ([]byte, error) {
	file := xlsx.NewFile()

	itemSheet, err := file.AddSheet("Items")
	if err != nil {
		return nil, fmt.Errorf("failed to add items worksheet: %w", err)
	}

	itemHeaders := []string{
		"ID", "Barcode", "Name", "Category", "Quantity", "Unit", "Condition",
		"Min Stock", "Location", "Notes", "Organization", "Sync Status",
		"Created At", "Updated At",
	}
	headerRow := itemSheet.AddRow()
	for _, header := range itemHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for i := range items {
		item := &items[i]
		row := itemSheet.AddRow()
		for _, value := range []string{
			item.ID,
			item.Barcode,
			item.Name,
			string(item.Category),
			strconv.Itoa(item.Quantity),
			item.Unit,
			string(item.Condition),
			strconv.Itoa(item.MinStock),
			item.Location,
			item.Notes,
			string(item.OrgID),
			string(item.SyncStatus),
			item.CreatedAt.Format("2006-01-02 15:04:05"),
			item.UpdatedAt.Format("2006-01-02 15:04:05"),
		} {
			row.AddCell().Value = value
		}
	}

	txSheet, err := file.AddSheet("Transactions")
	if err != nil {
		return nil, fmt.Errorf("failed to add transactions worksheet: %w", err)
	}

	txHeaders := []string{
		"ID", "Item ID", "Direction", "Quantity", "Reason", "Recipient",
		"Performed By", "Occurred At", "Notes", "Organization", "Sync Status",
	}
	txHeaderRow := txSheet.AddRow()
	for _, header := range txHeaders {
		cell := txHeaderRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for i := range txs {
		t := &txs[i]
		row := txSheet.AddRow()
		for _, value := range []string{
			t.ID,
			t.ItemID,
			string(t.Direction),
			strconv.Itoa(t.Quantity),
			string(t.Reason),
			t.Recipient,
			t.PerformedBy,
			t.OccurredAt.Format("2006-01-02 15:04:05"),
			t.Notes,
			string(t.OrgID),
			string(t.SyncStatus),
		} {
			row.AddCell().Value = value
		}
	}

	for i := 1; i <= len(itemHeaders); i++ {
		itemSheet.SetColWidth(i, i, 15)
	}
	for i := 1; i <= len(txHeaders); i++ {
		txSheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}
