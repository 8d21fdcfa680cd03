package venue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/seoul-connect-api/internal/types"
)

// CachedCatalog memoizes catalog lookups. Venue data changes slowly, so a
// generous TTL keeps repeated planning runs from hammering the provider.
type CachedCatalog struct {
	inner  Catalog
	cache  *cache.Cache
	logger *slog.Logger
}

// NewCachedCatalog wraps a catalog with an in-memory TTL cache.
func NewCachedCatalog(inner Catalog, ttl time.Duration, logger *slog.Logger) *CachedCatalog {
	return &CachedCatalog{
		inner:  inner,
		cache:  cache.New(ttl, ttl/2),
		logger: logger,
	}
}

func (c *CachedCatalog) Search(ctx context.Context, query string, limit int) ([]types.VenueCandidate, error) {
	key := fmt.Sprintf("catalog:%s:%d", query, limit)
	if cached, found := c.cache.Get(key); found {
		c.logger.DebugContext(ctx, "venue catalog cache hit", slog.String("query", query))
		return cached.([]types.VenueCandidate), nil
	}

	results, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, results, cache.DefaultExpiration)
	return results, nil
}

// CatalogFunc adapts a function to the Catalog interface.
type CatalogFunc func(ctx context.Context, query string, limit int) ([]types.VenueCandidate, error)

func (f CatalogFunc) Search(ctx context.Context, query string, limit int) ([]types.VenueCandidate, error) {
	return f(ctx, query, limit)
}
