// internal/adapters/localdb/item_store.go
package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// itemStore implements ports.ItemStore
type itemStore struct {
	q      querier
	logger *slog.Logger
}

var itemColumns = []string{
	"id", "barcode", "name", "category", "quantity", "unit", "condition",
	"min_stock", "location", "notes", "image_ref", "org_id",
	"created_at", "updated_at", "sync_status",
}

const itemUpsert = `
	INSERT INTO items (
		id, barcode, name, category, quantity, unit, condition,
		min_stock, location, notes, image_ref, org_id,
		created_at, updated_at, sync_status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		barcode = excluded.barcode,
		name = excluded.name,
		category = excluded.category,
		quantity = excluded.quantity,
		unit = excluded.unit,
		condition = excluded.condition,
		min_stock = excluded.min_stock,
		location = excluded.location,
		notes = excluded.notes,
		image_ref = excluded.image_ref,
		org_id = excluded.org_id,
		updated_at = excluded.updated_at,
		sync_status = excluded.sync_status`

// Put upserts an item and forces it into pending sync status.
func (s *itemStore) Put(ctx context.Context, item *domain.Item) error {
	return s.put(ctx, item, domain.SyncPending)
}

// PutSynced upserts an item as already replicated. Reserved for the
// pull-merge path.
func (s *itemStore) PutSynced(ctx context.Context, item *domain.Item) error {
	return s.put(ctx, item, domain.SyncSynced)
}

func (s *itemStore) put(ctx context.Context, item *domain.Item, status domain.SyncStatus) error {
	item.SyncStatus = status

	var imageRef any
	if item.ImageRef != "" {
		imageRef = item.ImageRef
	}

	_, err := s.q.ExecContext(ctx, itemUpsert,
		item.ID, item.Barcode, item.Name, item.Category, item.Quantity,
		item.Unit, item.Condition, item.MinStock, item.Location, item.Notes,
		imageRef, item.OrgID.Normalize(), item.CreatedAt, item.UpdatedAt,
		item.SyncStatus,
	)
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}

	s.logger.DebugContext(ctx, "item saved",
		slog.String("id", item.ID),
		slog.String("sync_status", string(item.SyncStatus)))

	return nil
}

// Get returns an item by id, or nil when it does not exist.
func (s *itemStore) Get(ctx context.Context, id string) (*domain.Item, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, barcode, name, category, quantity, unit, condition,
		       min_stock, location, notes, image_ref, org_id,
		       created_at, updated_at, sync_status
		FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetByBarcode returns the item with the given barcode inside the
// organization partition, or nil.
func (s *itemStore) GetByBarcode(ctx context.Context, barcode string, org domain.OrgID) (*domain.Item, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, barcode, name, category, quantity, unit, condition,
		       min_stock, location, notes, image_ref, org_id,
		       created_at, updated_at, sync_status
		FROM items WHERE barcode = ? AND org_id = ?`, barcode, org.Normalize())

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by barcode: %w", err)
	}
	return item, nil
}

// List returns items matching the filter. The store itself guarantees no
// ordering; the filter's sort fields decide it.
func (s *itemStore) List(ctx context.Context, filter ports.ItemFilter) ([]domain.Item, error) {
	qb := squirrel.Select(itemColumns...).From("items")

	if filter.Search != "" {
		qb = qb.Where(squirrel.Like{"name": "%" + filter.Search + "%"})
	}
	if filter.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Org.Scoped() {
		qb = qb.Where(squirrel.Eq{"org_id": filter.Org.Normalize()})
	}
	if filter.LowStock {
		qb = qb.Where("min_stock > 0 AND quantity <= min_stock")
	}

	direction := "ASC"
	if filter.SortOrder == "desc" {
		direction = "DESC"
	}
	switch filter.SortBy {
	case "quantity":
		qb = qb.OrderBy("quantity " + direction)
	case "updated":
		qb = qb.OrderBy("updated_at " + direction)
	case "created":
		qb = qb.OrderBy("created_at " + direction)
	default:
		qb = qb.OrderBy("name " + direction)
	}

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item query: %w", err)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListBySyncStatus returns items in the given replication state.
func (s *itemStore) ListBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Item, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, barcode, name, category, quantity, unit, condition,
		       min_stock, location, notes, image_ref, org_id,
		       created_at, updated_at, sync_status
		FROM items WHERE sync_status = ?`, status)
	if err != nil {
		return nil, fmt.Errorf("listing items by sync status: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// SetSyncStatus flips the replication state without touching the payload or
// the updated_at timestamp.
func (s *itemStore) SetSyncStatus(ctx context.Context, id string, status domain.SyncStatus) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE items SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("setting item sync status: %w", err)
	}
	return nil
}

// Delete hard-removes an item. The caller is responsible for enqueueing the
// pre-delete snapshot; the store does not cascade into the pending queue.
func (s *itemStore) Delete(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item not found: %s", id)
	}

	s.logger.InfoContext(ctx, "item deleted", slog.String("id", id))
	return nil
}

// Count returns the total number of items.
func (s *itemStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	var imageRef sql.NullString

	err := row.Scan(
		&item.ID, &item.Barcode, &item.Name, &item.Category, &item.Quantity,
		&item.Unit, &item.Condition, &item.MinStock, &item.Location,
		&item.Notes, &imageRef, &item.OrgID, &item.CreatedAt, &item.UpdatedAt,
		&item.SyncStatus,
	)
	if err != nil {
		return nil, err
	}

	item.ImageRef = imageRef.String
	return item, nil
}

func collectItems(rows *sql.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
