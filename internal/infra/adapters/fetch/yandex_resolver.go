package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-file-relay/internal/domain/ports/adapter"
	"telegram-file-relay/internal/infra/logging"
	"telegram-file-relay/internal/infra/metrics"
)

var _ adapter.Resolver = (*YandexResolver)(nil)

const yandexDownloadPath = "/v1/disk/public/resources/download"

var yandexShareHosts = []string{
	"disk.yandex.ru",
	"disk.yandex.com",
	"disk.yandex.by",
	"disk.yandex.kz",
	"yadi.sk",
}

// YandexResolver turns Yandex.Disk public share links into direct download
// hrefs using the public resources API. Every failure falls back to the
// original URL.
type YandexResolver struct {
	client  *http.Client
	apiBase string
	log     *zerolog.Logger
}

func NewYandexResolver(apiBase string, timeout time.Duration, logger *zerolog.Logger) *YandexResolver {
	return &YandexResolver{
		client:  &http.Client{Timeout: timeout},
		apiBase: strings.TrimRight(apiBase, "/"),
		log:     logger,
	}
}

// IsShareLink reports whether rawURL points at a Yandex.Disk public share.
func IsShareLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range yandexShareHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (r *YandexResolver) Resolve(ctx context.Context, rawURL string) string {
	if !IsShareLink(rawURL) {
		return rawURL
	}
	href, err := r.lookup(ctx, rawURL)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Str("url", rawURL).Msg("share link not resolved, using original url")
		metrics.IncResolverFallback("yandex")
		return rawURL
	}
	return href
}

type yandexDownloadLink struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

func (r *YandexResolver) lookup(ctx context.Context, publicKey string) (string, error) {
	endpoint := r.apiBase + yandexDownloadPath + "?" + url.Values{"public_key": {publicKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("yandex api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yandex api returned status %d", resp.StatusCode)
	}
	var link yandexDownloadLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return "", fmt.Errorf("decode yandex response: %w", err)
	}
	if strings.TrimSpace(link.Href) == "" {
		return "", fmt.Errorf("yandex response has no href")
	}
	return link.Href, nil
}
