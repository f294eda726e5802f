package tasks

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/matching"
	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/services"
	"github.com/desertthunder/gilderr/internal/shared"
)

// SearchCache stores candidate lists by catalog and normalized query key.
//
// Lookup returns [shared.ErrCacheMiss] when nothing is stored for the key.
type SearchCache interface {
	Lookup(catalog, queryKey string) ([]models.CatalogCandidate, error)
	Store(catalog, queryKey string, candidates []models.CatalogCandidate) error
}

// CachingCatalog decorates a [services.Catalog] with a [SearchCache].
//
// The key ignores the year, which only affects ranking. Only non-empty successful results are stored
// and cache faults are logged, never returned.
type CachingCatalog struct {
	next   services.Catalog
	cache  SearchCache
	logger *log.Logger
}

// NewCachingCatalog wraps next with cache.
func NewCachingCatalog(next services.Catalog, cache SearchCache, logger *log.Logger) *CachingCatalog {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &CachingCatalog{next: next, cache: cache, logger: logger}
}

func (c *CachingCatalog) Name() string {
	return c.next.Name()
}

// Search returns cached candidates when present, otherwise asks the wrapped catalog.
func (c *CachingCatalog) Search(ctx context.Context, artist, title, year string) ([]models.CatalogCandidate, error) {
	key := matching.QueryKey(artist, title)

	cached, err := c.cache.Lookup(c.next.Name(), key)
	switch {
	case err == nil && len(cached) > 0:
		c.logger.Debug("search cache hit", "key", key, "candidates", len(cached))
		return cached, nil
	case err != nil && !errors.Is(err, shared.ErrCacheMiss):
		c.logger.Warn("search cache lookup failed", "key", key, "error", err)
	}

	candidates, err := c.next.Search(ctx, artist, title, year)
	if err != nil {
		return nil, err
	}

	if len(candidates) > 0 {
		if err := c.cache.Store(c.next.Name(), key, candidates); err != nil {
			c.logger.Warn("search cache store failed", "key", key, "error", err)
		}
	}
	return candidates, nil
}
