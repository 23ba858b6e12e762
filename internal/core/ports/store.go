// internal/core/ports/store.go
package ports

import (
	"context"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// ItemFilter holds filter parameters for listing items.
type ItemFilter struct {
	Search    string
	Category  domain.ItemCategory
	Org       domain.OrgID
	LowStock  bool
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ItemStore is the persistence port for the items collection. Put forces the
// record into pending sync status; PutSynced is reserved for the pull-merge
// path and writes the record as synced.
type ItemStore interface {
	Put(ctx context.Context, item *domain.Item) error
	PutSynced(ctx context.Context, item *domain.Item) error
	Get(ctx context.Context, id string) (*domain.Item, error)
	GetByBarcode(ctx context.Context, barcode string, org domain.OrgID) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
	ListBySyncStatus(ctx context.Context, status domain.SyncStatus) ([]domain.Item, error)
	SetSyncStatus(ctx context.Context, id string, status domain.SyncStatus) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// TransactionStore is the persistence port for the transactions collection.
// Transactions are immutable; there is no update path.
type TransactionStore interface {
	Put(ctx context.Context, t *domain.Transaction) error
	PutSynced(ctx context.Context, t *domain.Transaction) error
	Get(ctx context.Context, id string) (*domain.Transaction, error)
	ListByItem(ctx context.Context, itemID string) ([]domain.Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Transaction, error)
	SetSyncStatus(ctx context.Context, id string, status domain.SyncStatus) error
	DeleteByItem(ctx context.Context, itemID string) error
	Count(ctx context.Context) (int64, error)
}

// PendingQueue is the ordered replication log. Drain returns entries in
// creation order; that ordering is load-bearing for replay.
type PendingQueue interface {
	Enqueue(ctx context.Context, op domain.OpKind, entity domain.EntityKind, payload any) (*domain.PendingOperation, error)
	Drain(ctx context.Context) ([]domain.PendingOperation, error)
	Remove(ctx context.Context, id string) error
	Bump(ctx context.Context, id string, lastError string) error
	Count(ctx context.Context) (int64, error)
}

// SettingsStore persists the AppSettings singleton. Get creates the record
// with defaults when it does not exist yet.
type SettingsStore interface {
	Get(ctx context.Context) (*domain.AppSettings, error)
	Put(ctx context.Context, s *domain.AppSettings) error
	Reset(ctx context.Context) (*domain.AppSettings, error)
}

// OrganizationStore is the persistence port for the local organization copy.
// Organizations are online-only; local rows are always written synced.
type OrganizationStore interface {
	PutSynced(ctx context.Context, org *domain.Organization) error
	Get(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
	Delete(ctx context.Context, id string) error
}

// Store is the durable local store holding every collection. Transact runs fn
// against transaction-bound collection stores; either every write in fn is
// visible or none is.
type Store interface {
	Items() ItemStore
	Transactions() TransactionStore
	Pending() PendingQueue
	Settings() SettingsStore
	Organizations() OrganizationStore
	LocalStats(ctx context.Context, org domain.OrgID) (*domain.Stats, error)
	Transact(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}
