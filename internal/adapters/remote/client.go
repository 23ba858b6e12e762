// internal/adapters/remote/client.go
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// StatusError is returned when the remote authority answered but rejected
// the request. Rejections are per-operation failures; they never abort a
// whole sync cycle.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the remote authority over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Statically assert that *Client implements the RemoteAuthority port.
var _ ports.RemoteAuthority = (*Client)(nil)

// NewClient creates a remote authority client. A zero timeout leaves the
// transport's default in place; the core sync path carries no explicit
// timeout of its own.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "remote")),
	}
}

// ListItems fetches the full remote item collection, optionally scoped to an
// organization.
func (c *Client) ListItems(ctx context.Context, org domain.OrgID) ([]domain.Item, error) {
	query := url.Values{}
	if org.Scoped() {
		query.Set("org_id", string(org.Normalize()))
	}

	var items []domain.Item
	if err := c.do(ctx, http.MethodGet, "/items", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem replicates an item creation. Idempotent by id: the remote
// upserts.
func (c *Client) CreateItem(ctx context.Context, item *domain.Item) error {
	return c.do(ctx, http.MethodPost, "/items", nil, item, nil)
}

// UpdateItem replicates an item update.
func (c *Client) UpdateItem(ctx context.Context, item *domain.Item) error {
	return c.do(ctx, http.MethodPut, "/items/"+url.PathEscape(item.ID), nil, item, nil)
}

// DeleteItem replicates an item deletion. The remote cascades to the item's
// transactions; a 404 counts as success so replays stay idempotent.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil, nil)
	return ignoreNotFound(err)
}

// ListTransactions fetches the most recent transactions, capped at limit.
func (c *Client) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var txs []domain.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", query, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction replicates a transaction creation. The remote applies
// the quantity mutation rule on its side on insert.
func (c *Client) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	return c.do(ctx, http.MethodPost, "/transactions", nil, t, nil)
}

// DeleteTransaction replicates a transaction deletion.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil, nil)
	return ignoreNotFound(err)
}

// ListOrganizations fetches all organizations.
func (c *Client) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	if err := c.do(ctx, http.MethodGet, "/organizations", nil, nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// CreateOrganization creates an organization remotely.
func (c *Client) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	return c.do(ctx, http.MethodPost, "/organizations", nil, org, nil)
}

// UpdateOrganization updates an organization remotely.
func (c *Client) UpdateOrganization(ctx context.Context, org *domain.Organization) error {
	return c.do(ctx, http.MethodPut, "/organizations/"+url.PathEscape(org.ID), nil, org, nil)
}

// DeleteOrganization deletes an organization remotely.
func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/organizations/"+url.PathEscape(id), nil, nil, nil)
	return ignoreNotFound(err)
}

// Stats fetches aggregate dashboard figures computed from the canonical
// dataset.
func (c *Client) Stats(ctx context.Context, org domain.OrgID) (*domain.Stats, error) {
	query := url.Values{}
	if org.Scoped() {
		query.Set("org_id", string(org.Normalize()))
	}

	stats := &domain.Stats{}
	if err := c.do(ctx, http.MethodGet, "/stats", query, nil, stats); err != nil {
		return nil, err
	}
	stats.Source = domain.StatsRemote
	return stats, nil
}

type bulkRequest struct {
	Items        []domain.Item        `json:"items"`
	Transactions []domain.Transaction `json:"transactions"`
}

// BulkSync pushes arrays of items and transactions in one request and
// returns per-entity counts.
func (c *Client) BulkSync(ctx context.Context, items []domain.Item, txs []domain.Transaction) (*ports.BulkResult, error) {
	result := &ports.BulkResult{}
	req := bulkRequest{Items: items, Transactions: txs}
	if err := c.do(ctx, http.MethodPost, "/sync", nil, req, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport-level failure: the remote could not be reached at all.
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(ports.ErrRemoteUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %w", method, path,
			&StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
		}
	}

	c.logger.DebugContext(ctx, "remote call completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	return nil
}

func ignoreNotFound(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}
