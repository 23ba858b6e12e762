// internal/handlers/export_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/pklemenc/shelfsync/internal/adapters/localdb"
	"github.com/pklemenc/shelfsync/internal/core/domain"
)

func seedExportData(t *testing.T, store *localdb.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	items := []*domain.Item{
		{ID: "item-1", Name: "Canned beans", Category: domain.CategoryFood,
			Quantity: 30, Unit: "cans", OrgID: "org-1", CreatedAt: now, UpdatedAt: now},
		{ID: "item-2", Name: "Winter jacket", Category: domain.CategoryClothing,
			Quantity: 2, Unit: "pcs", OrgID: "org-1", CreatedAt: now, UpdatedAt: now},
	}
	for _, item := range items {
		require.NoError(t, store.Items().PutSynced(ctx, item))
	}

	require.NoError(t, store.Transactions().PutSynced(ctx, &domain.Transaction{
		ID: "tx-1", ItemID: "item-1", Direction: domain.DirectionIn, Quantity: 10,
		Reason: domain.ReasonDonation, OccurredAt: now, OrgID: "org-1",
	}))
}

func TestExportHandler_Excel(t *testing.T) {
	store := localdb.NewTestStore(t)
	seedExportData(t, store)
	h := NewExportHandler(store, testLogger())

	rec := httptest.NewRecorder()
	h.ExportExcel(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/excel", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inventory_export_")

	file, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 2)
	assert.Equal(t, "Items", file.Sheets[0].Name)
	assert.Equal(t, "Transactions", file.Sheets[1].Name)

	// Header row plus one row per record.
	assert.Equal(t, 3, file.Sheets[0].MaxRow)
	assert.Equal(t, 2, file.Sheets[1].MaxRow)

	row, err := file.Sheets[0].Row(1)
	require.NoError(t, err)
	assert.Equal(t, "Canned beans", row.GetCell(2).Value)
}

func TestExportHandler_JSON(t *testing.T) {
	store := localdb.NewTestStore(t)
	seedExportData(t, store)
	h := NewExportHandler(store, testLogger())

	rec := httptest.NewRecorder()
	h.ExportJSON(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/json", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Items        []domain.Item        `json:"items"`
		Transactions []domain.Transaction `json:"transactions"`
		Metadata     struct {
			TotalItems        int          `json:"total_items"`
			TotalTransactions int          `json:"total_transactions"`
			OrgID             domain.OrgID `json:"org_id"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Items, 2)
	assert.Len(t, envelope.Transactions, 1)
	assert.Equal(t, 2, envelope.Metadata.TotalItems)
	assert.Equal(t, 1, envelope.Metadata.TotalTransactions)
}

func TestExportHandler_JSONScopedByOrg(t *testing.T) {
	store := localdb.NewTestStore(t)
	seedExportData(t, store)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.Items().PutSynced(ctx, &domain.Item{
		ID: "item-3", Name: "Rice", Quantity: 8, OrgID: "org-2",
		CreatedAt: now, UpdatedAt: now,
	}))

	h := NewExportHandler(store, testLogger())

	rec := httptest.NewRecorder()
	h.ExportJSON(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/json?org_id=org-2", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Items []domain.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Items, 1)
	assert.Equal(t, "item-3", envelope.Items[0].ID)
}
