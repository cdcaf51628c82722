// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog talks to the Notion-backed paper catalog: duplicate
// lookup before analysis and record creation after it.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Catalog failure modes. ErrRejected means the service understood and
// refused the request (bad schema, revoked token); ErrUnreachable means
// it could not be reached at all. Neither is retried.
var (
	ErrRejected    = errors.New("catalog rejected the request")
	ErrUnreachable = errors.New("catalog unreachable")
)

// apiBase is the catalog API endpoint. Package-level var so tests can
// substitute an httptest server.
var apiBase = "https://api.notion.com/v1"

// apiVersion is pinned; the property payload shapes below depend on it.
const apiVersion = "2022-06-28"

// Client is a minimal catalog API client scoped to one database.
type Client struct {
	token      string
	databaseID string
	status     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient returns a Client for the configured catalog database.
func NewClient(cfg *types.CatalogConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	status := cfg.DefaultStatus
	if status == "" {
		status = "Inbox"
	}
	return &Client{
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		status:     status,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Ping verifies the token and database ID by retrieving the database.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/databases/"+c.databaseID, nil, nil)
}

// do sends one authenticated request and decodes the reply into out when
// out is non-nil. Non-2xx replies map to ErrRejected with the service's
// status and message; transport failures map to ErrUnreachable.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling catalog request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, body)
	if err != nil {
		return fmt.Errorf("creating catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%w: %d %s: %s", ErrRejected, resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding catalog response: %w", err)
		}
	}
	return nil
}
