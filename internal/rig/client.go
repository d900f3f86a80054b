// SPDX-License-Identifier: BSD-3-Clause

package rig

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ktsol/pirig/internal/snapshot"
)

// Client fetches a rig's health snapshot from its agent. Any failure —
// network, timeout, malformed body — is classified as a snapshot error
// by the caller; Client itself does not distinguish the causes.
type Client interface {
	Fetch(ctx context.Context) (snapshot.Snapshot, error)
}

// HTTPClient polls an agent's single HTTP route with the timeout it was
// constructed with (Config.HTTPTimeout, 10 seconds by default).
type HTTPClient struct {
	URL        string
	HTTPClient *http.Client
}

// NewHTTPClient returns a Client bound to url with the given timeout.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Fetch issues a GET against URL and decodes the response as a snapshot.
func (c *HTTPClient) Fetch(ctx context.Context) (snapshot.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("rig: build request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("rig: fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("rig: read response: %w", err)
	}

	snap, err := snapshot.Decode(body)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}
