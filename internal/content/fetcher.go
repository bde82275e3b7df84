package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/learnloop/activity-service/internal/cache"
)

// ErrFetchFailed marks a fatal content retrieval failure (network error or
// non-2xx response). It is never retried automatically.
var ErrFetchFailed = errors.New("content fetch failed")

// Fetcher retrieves raw activity XML by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches content over HTTP with a read-through Redis cache.
// Authored XML changes rarely, so cached documents are served until the TTL
// expires.
type HTTPFetcher struct {
	client *http.Client
	cache  cache.CacheService
	logger *slog.Logger
	ttl    time.Duration
}

// NewHTTPFetcher creates a fetcher. cacheService may be nil to disable
// caching (used by tests).
func NewHTTPFetcher(cacheService cache.CacheService, logger *slog.Logger, ttl time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  cacheService,
		logger: logger,
		ttl:    ttl,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	cacheKey := "content:" + url

	if f.cache != nil {
		var cached []byte
		err := f.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			f.logger.Debug("content cache hit", "url", url)
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			f.logger.Warn("content cache lookup failed", "url", url, "error", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrFetchFailed, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if f.cache != nil {
		if err := f.cache.Set(ctx, cacheKey, data, f.ttl); err != nil {
			f.logger.Warn("failed to cache content", "url", url, "error", err)
		}
	}

	f.logger.Info("content fetched", "url", url, "bytes", len(data))
	return data, nil
}
