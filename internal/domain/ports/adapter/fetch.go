package adapter

import (
	"context"

	"telegram-file-relay/internal/domain/model"
)

// Fetcher retrieves the bytes behind a direct URL. Implementations must stop
// reading after maxBytes+1 bytes so oversize payloads are never fully buffered.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, maxBytes int64) (*model.DownloadResult, error)
}

// Resolver turns share links into direct download URLs. It never fails:
// anything it cannot resolve comes back unchanged.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) string
}
