// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// maxBinaryBytes is the upper bound on a downloaded binary (500 MB). The
// server binary is well under this; the limit guards against a misbehaving
// mirror streaming forever.
const maxBinaryBytes = 500 << 20

// Client downloads release assets over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent with download requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a download client. The default HTTP client has no overall
// timeout because binary downloads over slow links can legitimately take
// minutes; cancellation is the caller's job via context.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Download fetches url into a temporary file inside dir and returns the temp
// file path. The caller removes or renames the file; placing it in dir keeps
// the final os.Rename an atomic same-filesystem move.
func (c *Client) Download(ctx context.Context, url, dir string) (_ string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(dir, "minioctl-download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxBinaryBytes)); err != nil {
		// Best-effort removal of partially written temp file.
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing to temp file: %w", err)
	}

	return tmp.Name(), nil
}
