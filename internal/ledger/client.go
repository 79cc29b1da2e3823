package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrAccountNotFound is returned when the accounting backend knows no such account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrUnknownRegion is returned when no backend is configured for a region.
	ErrUnknownRegion = errors.New("ledger: unknown region")
)

// Client fetches accounting snapshots from the regional backends. One fetch
// is one request/response; retry policy, if any, belongs to callers.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient constructs a ledger client.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Regions) == 0 {
		return nil, errors.New("ledger: no regions configured")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// FetchSnapshot returns the raw snapshot document for one account. The
// document is left untyped; normalization happens in the billing domain.
func (c *Client) FetchSnapshot(ctx context.Context, region, accountNumber string) (map[string]any, error) {
	if accountNumber == "" {
		return nil, errors.New("ledger: empty account number")
	}
	rc, ok := c.cfg.RegionFor(region)
	if !ok {
		return nil, ErrUnknownRegion
	}

	path := "/api/accounts/" + url.PathEscape(accountNumber) + "/snapshot"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(rc.BaseURL, "/")+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if rc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+rc.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrAccountNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ledger: http %d", resp.StatusCode)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
