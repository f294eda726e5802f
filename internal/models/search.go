package models

import (
	"encoding/json"
	"fmt"
)

// CachedSearch holds the candidates a catalog returned for one normalized query.
type CachedSearch struct {
	base
	catalog    string
	queryKey   string
	candidates []CatalogCandidate
	hits       int
}

// NewCachedSearch creates a cache entry for the given catalog and query key.
func NewCachedSearch(sequence int, catalog, queryKey string, candidates []CatalogCandidate) *CachedSearch {
	return &CachedSearch{
		base:       newBase(sequence),
		catalog:    catalog,
		queryKey:   queryKey,
		candidates: candidates,
	}
}

func (c *CachedSearch) Catalog() string                { return c.catalog }
func (c *CachedSearch) QueryKey() string               { return c.queryKey }
func (c *CachedSearch) Candidates() []CatalogCandidate { return c.candidates }
func (c *CachedSearch) Hits() int                      { return c.hits }
func (c *CachedSearch) SetHits(n int)                  { c.hits = n }

// EncodeCandidates returns the JSON column value for the candidate list.
func (c *CachedSearch) EncodeCandidates() (string, error) {
	data, err := json.Marshal(c.candidates)
	if err != nil {
		return "", fmt.Errorf("failed to encode candidates: %w", err)
	}
	return string(data), nil
}

// DecodeCandidates replaces the candidate list from its JSON column value.
func (c *CachedSearch) DecodeCandidates(raw string) error {
	var cs []CatalogCandidate
	if err := json.Unmarshal([]byte(raw), &cs); err != nil {
		return fmt.Errorf("failed to decode candidates: %w", err)
	}
	c.candidates = cs
	return nil
}

// Validate checks required fields.
func (c *CachedSearch) Validate() error {
	if c.id == "" {
		return fmt.Errorf("cache entry id is required")
	}
	if c.catalog == "" {
		return fmt.Errorf("catalog name is required")
	}
	if c.queryKey == "" {
		return fmt.Errorf("query key is required")
	}
	if len(c.candidates) == 0 {
		return fmt.Errorf("cache entry must hold at least one candidate")
	}
	return nil
}
