// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// InventoryService handles local inventory writes. Every mutation persists
// through the durable store and enqueues a pending operation for later
// replication; a store failure fails the whole call and nothing is queued.
type InventoryService struct {
	store  ports.Store
	logger *slog.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store ports.Store, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		store:  store,
		logger: logger.With(slog.String("service", "inventory")),
	}
}

// CreateItem validates and persists a new item, queueing its replication.
func (s *InventoryService) CreateItem(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	item.PrepareForStorage()

	err := s.store.Transact(ctx, func(st ports.Store) error {
		if err := st.Items().Put(ctx, item); err != nil {
			return err
		}
		_, err := st.Pending().Enqueue(ctx, domain.OpCreate, domain.EntityItem, item)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.InfoContext(ctx, "item created",
		slog.String("id", item.ID),
		slog.String("name", item.Name))

	return nil
}

// UpdateItem validates and persists an edit to an existing item, queueing
// its replication.
func (s *InventoryService) UpdateItem(ctx context.Context, id string, item *domain.Item) error {
	item.ID = id
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.store.Items().Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("item not found: %s", id)
	}

	item.CreatedAt = existing.CreatedAt
	item.PrepareForStorage()

	err = s.store.Transact(ctx, func(st ports.Store) error {
		if err := st.Items().Put(ctx, item); err != nil {
			return err
		}
		_, err := st.Pending().Enqueue(ctx, domain.OpUpdate, domain.EntityItem, item)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.InfoContext(ctx, "item updated", slog.String("id", id))
	return nil
}

// DeleteItem removes an item and its local transactions, queueing a delete
// operation that carries the pre-delete snapshot. The remote cascades to
// dependent transactions on its own.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	snapshot, err := s.store.Items().Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if snapshot == nil {
		return fmt.Errorf("item not found: %s", id)
	}

	err = s.store.Transact(ctx, func(st ports.Store) error {
		if err := st.Transactions().DeleteByItem(ctx, id); err != nil {
			return err
		}
		if err := st.Items().Delete(ctx, id); err != nil {
			return err
		}
		_, err := st.Pending().Enqueue(ctx, domain.OpDelete, domain.EntityItem, snapshot)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.logger.InfoContext(ctx, "item deleted", slog.String("id", id))
	return nil
}

// RecordTransaction persists a new inventory movement, applies the quantity
// mutation rule to the referenced item and queues the transaction for
// replication, all atomically: a reader that observes the transaction also
// observes the updated quantity.
//
// A transaction referencing a missing item is persisted and queued anyway;
// the quantity rule is an explicit no-op in that case, not an error.
func (s *InventoryService) RecordTransaction(ctx context.Context, t *domain.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	t.PrepareForStorage()

	err := s.store.Transact(ctx, func(st ports.Store) error {
		if err := st.Transactions().Put(ctx, t); err != nil {
			return err
		}

		item, err := st.Items().Get(ctx, t.ItemID)
		if err != nil {
			return err
		}
		if item != nil {
			item.Apply(t)
			item.UpdatedAt = t.OccurredAt
			if err := st.Items().Put(ctx, item); err != nil {
				return err
			}
		} else {
			s.logger.WarnContext(ctx, "transaction references missing item, skipping quantity update",
				slog.String("transaction_id", t.ID),
				slog.String("item_id", t.ItemID))
		}

		_, err = st.Pending().Enqueue(ctx, domain.OpCreate, domain.EntityTransaction, t)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction recorded",
		slog.String("id", t.ID),
		slog.String("item_id", t.ItemID),
		slog.String("direction", string(t.Direction)),
		slog.Int("quantity", t.Quantity))

	return nil
}

// GetItem returns an item by id.
func (s *InventoryService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.store.Items().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item not found: %s", id)
	}
	return item, nil
}

// GetItemByBarcode returns the item carrying a barcode inside the
// organization partition, or nil when none matches.
func (s *InventoryService) GetItemByBarcode(ctx context.Context, barcode string, org domain.OrgID) (*domain.Item, error) {
	item, err := s.store.Items().GetByBarcode(ctx, barcode, org)
	if err != nil {
		return nil, fmt.Errorf("failed to get item by barcode: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter.
func (s *InventoryService) ListItems(ctx context.Context, filter ports.ItemFilter) ([]domain.Item, error) {
	items, err := s.store.Items().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListItemTransactions returns the movement history of one item.
func (s *InventoryService) ListItemTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error) {
	txs, err := s.store.Transactions().ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// ListRecentTransactions returns the most recent movements.
func (s *InventoryService) ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	txs, err := s.store.Transactions().ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	return txs, nil
}
