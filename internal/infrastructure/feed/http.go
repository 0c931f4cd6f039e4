// ABOUTME: HTTP client for station now-playing feeds
// ABOUTME: Appends a cache-defeating timestamp parameter on every request
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxFeedBytes = 256 * 1024

type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type HTTPClient struct {
	cfg    HTTPConfig
	client *http.Client
	now    func() time.Time
}

func NewHTTP(cfg HTTPConfig) *HTTPClient {
	return &HTTPClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		now: time.Now,
	}
}

// Fetch retrieves a feed payload. Interpretation of the bytes is the
// parser registry's job; this client only moves them.
func (h *HTTPClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cacheBust(url, h.now()), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Cache-Control", "no-store")
	if h.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", h.cfg.UserAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// cacheBust appends a timestamp query parameter so intermediaries never
// serve a stale now-playing document.
func cacheBust(url string, now time.Time) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "t=" + strconv.FormatInt(now.UnixMilli(), 10)
}
