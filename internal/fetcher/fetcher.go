// Package fetcher implements the shared HTML fetch contract used by the
// HTTP-based source adapters and the enrichment stage: a configured timeout
// and user-agent, redirects followed, and an empty result (never an error)
// on transport failures, non-2xx status, or non-HTML content.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a page is read. Contact details live in
// headers/footers; anything past 2 MiB is noise.
const maxBodyBytes = 2 << 20

// HTML fetches pages for text extraction.
type HTML struct {
	client    *http.Client
	userAgent string
}

// NewHTML creates an HTML fetcher with the given timeout and user-agent.
func NewHTML(timeout time.Duration, userAgent string) *HTML {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTML{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch returns the page body for rawURL, or "" when the page is unreachable,
// answers outside 2xx, or is not HTML. Upstream failures are logged and
// swallowed; callers treat "" as "no data from this call".
func (h *HTML) Fetch(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		zap.L().Debug("fetch: bad url", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		zap.L().Debug("fetch: request failed", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("fetch: non-2xx status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return ""
	}
	if ctype := resp.Header.Get("Content-Type"); !strings.Contains(ctype, "text/html") {
		zap.L().Debug("fetch: not html", zap.String("url", rawURL), zap.String("content_type", ctype))
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		zap.L().Debug("fetch: read body failed", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	return string(body)
}
