package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/domain"
)

// Item is the read-only catalog view this core needs: authoritative pricing
// plus stock for the post-purchase decrement.
type Item struct {
	ID        int64           `json:"id"`
	Title     string          `json:"item_title"`
	UnitPrice decimal.Decimal `json:"item_price"`
	Stock     int             `json:"item_stock"`
}

type CatalogClient interface {
	GetItem(ctx context.Context, itemID int64) (*Item, error)
	DecrementStock(ctx context.Context, itemID int64, quantity int) error
}

type HTTPCatalogClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPCatalogClient(baseURL string, timeout time.Duration) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPCatalogClient) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	url := fmt.Sprintf("%s/items/%d", c.baseURL, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog service unreachable: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("item %d: %w", itemID, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog service status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var item Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("catalog response decode: %w", err)
	}
	return &item, nil
}

// DecrementStock is fire-and-forget from the caller's perspective;
// out-of-stock races are not prevented by this core.
func (c *HTTPCatalogClient) DecrementStock(ctx context.Context, itemID int64, quantity int) error {
	body, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return fmt.Errorf("decrement request serialization: %w", err)
	}

	url := fmt.Sprintf("%s/items/%d/decrement-stock", c.baseURL, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("decrement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog service unreachable: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stock decrement status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}
	return nil
}
