package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"telegram-file-relay/internal/domain"
	"telegram-file-relay/internal/domain/model"
	"telegram-file-relay/internal/domain/ports/adapter"
)

var _ adapter.Fetcher = (*MultiFetcher)(nil)

// MultiFetcher routes a URL to the fetcher registered for its scheme.
type MultiFetcher struct {
	byScheme map[string]adapter.Fetcher
}

func NewMultiFetcher(byScheme map[string]adapter.Fetcher) *MultiFetcher {
	m := &MultiFetcher{byScheme: make(map[string]adapter.Fetcher, len(byScheme))}
	for scheme, f := range byScheme {
		if f != nil {
			m.byScheme[strings.ToLower(scheme)] = f
		}
	}
	return m
}

func (m *MultiFetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*model.DownloadResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	f, ok := m.byScheme[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, u.Scheme)
	}
	return f.Fetch(ctx, rawURL, maxBytes)
}
