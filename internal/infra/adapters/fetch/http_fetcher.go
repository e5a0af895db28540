package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"telegram-file-relay/internal/domain"
	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
)

var _ adapter.Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher downloads http(s) URLs with a single GET. Redirects are
// followed by the client; there are no retries.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*model.DownloadResult, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadStatus, resp.Status)
	}
	if err := tooLarge(resp.ContentLength, maxBytes); err != nil {
		return nil, err
	}

	data, err := readLimited(resp.Body, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &model.DownloadResult{
		URL:         rawURL,
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Elapsed:     time.Since(start),
	}, nil
}
