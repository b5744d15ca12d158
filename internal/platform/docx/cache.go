package docx

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/paperwork/paperwork/internal/platform/telemetry"
)

type cacheEntry struct {
	body      []byte
	etag      string
	fetchedAt time.Time
}

// AssetCache keeps fetched assets per path for the lifetime of the cache.
//
// With MaxAge 0 an entry is immutable once loaded. With MaxAge > 0 an entry
// older than MaxAge is revalidated on its next read; if the fetcher fails the
// stale entry is served, so an asset seen once stays available offline.
type AssetCache struct {
	fetcher Fetcher
	maxAge  time.Duration
	logger  zerolog.Logger
	metrics *telemetry.Provider
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// CacheOption configures an AssetCache.
type CacheOption func(*AssetCache)

// WithMaxAge sets the revalidation age. 0 keeps entries for the session.
func WithMaxAge(d time.Duration) CacheOption {
	return func(c *AssetCache) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithCacheLogger sets the logger used for stale fallbacks.
func WithCacheLogger(l zerolog.Logger) CacheOption {
	return func(c *AssetCache) { c.logger = l }
}

// WithCacheMetrics records hit, miss, revalidation and stale counts.
func WithCacheMetrics(p *telemetry.Provider) CacheOption {
	return func(c *AssetCache) { c.metrics = p }
}

// NewAssetCache creates a cache in front of f.
func NewAssetCache(f Fetcher, opts ...CacheOption) *AssetCache {
	c := &AssetCache{
		fetcher: f,
		logger:  zerolog.Nop(),
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the asset at path, fetching it on first use. Concurrent
// loads of one path share a single fetch, which is not cancelled when one
// of the waiting callers gives up. The returned slice must not be
// modified.
func (c *AssetCache) Get(ctx context.Context, path string) ([]byte, error) {
	c.mu.RLock()
	e, cached := c.entries[path]
	c.mu.RUnlock()
	if cached && c.fresh(e) {
		c.metrics.AssetCacheResult(telemetry.CacheHit)
		return e.body, nil
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(path, func() (any, error) {
		return c.load(fetchCtx, path)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}

func (c *AssetCache) fresh(e cacheEntry) bool {
	return c.maxAge == 0 || c.now().Sub(e.fetchedAt) < c.maxAge
}

func (c *AssetCache) load(ctx context.Context, path string) ([]byte, error) {
	c.mu.RLock()
	prev, cached := c.entries[path]
	c.mu.RUnlock()
	if cached && c.fresh(prev) {
		c.metrics.AssetCacheResult(telemetry.CacheHit)
		return prev.body, nil
	}

	etag := ""
	if cached {
		etag = prev.etag
	}
	a, err := c.fetcher.Fetch(ctx, path, etag)
	if err != nil {
		if cached {
			c.metrics.AssetCacheResult(telemetry.CacheStale)
			c.logger.Warn().Err(err).Str("path", path).Msg("asset revalidation failed, serving cached copy")
			return prev.body, nil
		}
		c.metrics.AssetCacheResult(telemetry.CacheError)
		return nil, err
	}

	e := cacheEntry{body: a.Body, etag: a.ETag, fetchedAt: c.now()}
	result := telemetry.CacheMiss
	if a.NotModified && cached {
		e.body = prev.body
		e.etag = prev.etag
		result = telemetry.CacheRevalidated
	}

	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()
	c.metrics.AssetCacheResult(result)
	return e.body, nil
}

// Len returns the number of cached paths.
func (c *AssetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
