// internal/adapters/lookup/lookup.go
package lookup

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// Client resolves barcodes and images against the external recognition
// collaborator. Every call carries a bounded timeout; an unreachable or
// empty-handed collaborator yields an unknown suggestion, never an error.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Statically assert that *Client implements the LookupService port.
var _ ports.LookupService = (*Client)(nil)

// NewClient creates a lookup client with a per-call timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		logger:  logger.With(slog.String("component", "lookup")),
	}
}

// Barcode resolves a barcode to a product suggestion.
func (c *Client) Barcode(ctx context.Context, code string) (*ports.Suggestion, error) {
	endpoint := c.baseURL + "/lookup/barcode?code=" + url.QueryEscape(code)
	return c.fetch(ctx, http.MethodGet, endpoint, nil), nil
}

// Image resolves an image payload to a product suggestion.
func (c *Client) Image(ctx context.Context, payload []byte) (*ports.Suggestion, error) {
	body, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		return unknown(), nil
	}
	return c.fetch(ctx, http.MethodPost, c.baseURL+"/lookup/image", body), nil
}

func (c *Client) fetch(ctx context.Context, method, endpoint string, body []byte) *ports.Suggestion {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return unknown()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "lookup unreachable, treating as no result",
			slog.String("error", err.Error()))
		return unknown()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unknown()
	}

	suggestion := &ports.Suggestion{}
	if err := json.NewDecoder(resp.Body).Decode(suggestion); err != nil {
		return unknown()
	}
	if suggestion.Confidence <= 0 || suggestion.Source == "" {
		return unknown()
	}
	return suggestion
}

func unknown() *ports.Suggestion {
	return &ports.Suggestion{Source: ports.SourceUnknown}
}
