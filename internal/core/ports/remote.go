// internal/core/ports/remote.go
package ports

import (
	"context"
	"errors"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// ErrRemoteUnavailable marks connectivity-class failures: the remote
// authority could not be reached at all. The sync engine aborts the whole
// cycle on this error, while per-entry rejections only skip the entry.
var ErrRemoteUnavailable = errors.New("remote authority unavailable")

// BulkResult holds per-entity counts returned by the bulk sync endpoint.
type BulkResult struct {
	Items        int `json:"items"`
	Transactions int `json:"transactions"`
	Failed       int `json:"failed"`
}

// RemoteAuthority is the HTTP contract of the canonical backend store. All
// mutating calls are idempotent by entity id.
type RemoteAuthority interface {
	ListItems(ctx context.Context, org domain.OrgID) ([]domain.Item, error)
	CreateItem(ctx context.Context, item *domain.Item) error
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id string) error

	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	ListOrganizations(ctx context.Context) ([]domain.Organization, error)
	CreateOrganization(ctx context.Context, org *domain.Organization) error
	UpdateOrganization(ctx context.Context, org *domain.Organization) error
	DeleteOrganization(ctx context.Context, id string) error

	Stats(ctx context.Context, org domain.OrgID) (*domain.Stats, error)
	BulkSync(ctx context.Context, items []domain.Item, txs []domain.Transaction) (*BulkResult, error)
}
