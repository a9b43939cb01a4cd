package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitshopapp/gemcart/internal/cache"
	"github.com/gitshopapp/gemcart/internal/logging"
	"github.com/gitshopapp/gemcart/internal/variant"
)

const catalogCacheVersion = "v1"

type catalogSource interface {
	Catalog(ctx context.Context) (variant.Catalog, error)
}

// CachedCatalog serves the attribute catalog from the cache provider and
// falls back to the underlying source on a miss. Cache failures are logged
// and never fail the read.
type CachedCatalog struct {
	source catalogSource
	cache  cache.Provider
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedCatalog(source catalogSource, provider cache.Provider, ttl time.Duration, logger *slog.Logger) *CachedCatalog {
	return &CachedCatalog{
		source: source,
		cache:  provider,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedCatalog) Catalog(ctx context.Context) (variant.Catalog, error) {
	logger := logging.FromContext(ctx, c.logger)
	key := cache.CatalogKey(catalogCacheVersion)

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var snapshot variant.Catalog
		if decodeErr := json.Unmarshal([]byte(cached), &snapshot); decodeErr == nil {
			return snapshot, nil
		}
		logger.Warn("discarding undecodable catalog snapshot", "key", key)
	case !errors.Is(err, cache.ErrNotFound):
		logger.Warn("catalog cache read failed", "error", err)
	}

	snapshot, err := c.source.Catalog(ctx)
	if err != nil {
		return variant.Catalog{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		logger.Warn("failed to encode catalog snapshot", "error", err)
		return snapshot, nil
	}
	if err := c.cache.Set(ctx, key, string(encoded), c.ttl); err != nil {
		logger.Warn("catalog cache write failed", "error", err)
	}

	return snapshot, nil
}

// Invalidate drops the cached snapshot so the next read hits the source.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, cache.CatalogKey(catalogCacheVersion))
}
