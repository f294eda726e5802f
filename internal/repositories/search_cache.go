package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/shared"
)

const searchCacheColumns = `
	id, sequence, catalog, query_key, candidates, hits,
	created_at, updated_at, deleted_at`

// SearchCacheRepository implements models.Repository[*models.CachedSearch] and the
// tasks.SearchCache lookup/store pair.
//
// Entries are unique per catalog and query key. Storing an existing key replaces its candidates and
// revives a soft-deleted entry.
type SearchCacheRepository struct {
	db *sql.DB
}

// NewSearchCacheRepository creates a new SearchCacheRepository with the given database connection
func NewSearchCacheRepository(db *sql.DB) *SearchCacheRepository {
	return &SearchCacheRepository{db: db}
}

// Create inserts a new cache entry with generated ID and sequence
func (r *SearchCacheRepository) Create(entry *models.CachedSearch) error {
	sequence, err := NextSequence(r.db, "search_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	entry.SetID(id)
	entry.SetSequence(sequence)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	candidates, err := entry.EncodeCandidates()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO search_cache (
			id, sequence, catalog, query_key, candidates, hits, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id, sequence, entry.Catalog(), entry.QueryKey(), candidates, entry.Hits(),
		entry.CreatedAt(), entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Get retrieves a cache entry by ID, excluding soft-deleted entries
func (r *SearchCacheRepository) Get(id string) (*models.CachedSearch, error) {
	query := `SELECT` + searchCacheColumns + `
		FROM search_cache
		WHERE id = ? AND deleted_at IS NULL
	`

	entry, err := scanCachedSearch(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCacheMiss, id)
	}
	return entry, err
}

// GetByKey retrieves the live entry for a catalog and normalized query key.
func (r *SearchCacheRepository) GetByKey(catalog, queryKey string) (*models.CachedSearch, error) {
	query := `SELECT` + searchCacheColumns + `
		FROM search_cache
		WHERE catalog = ? AND query_key = ? AND deleted_at IS NULL
	`

	entry, err := scanCachedSearch(r.db.QueryRow(query, catalog, queryKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCacheMiss, queryKey)
	}
	return entry, err
}

// Update replaces the candidates and hit count of an existing entry
func (r *SearchCacheRepository) Update(entry *models.CachedSearch) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	candidates, err := entry.EncodeCandidates()
	if err != nil {
		return err
	}

	now := time.Now()
	entry.SetUpdatedAt(now)

	query := `
		UPDATE search_cache
		SET candidates = ?, hits = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, candidates, entry.Hits(), now, entry.ID())
	if err != nil {
		return fmt.Errorf("failed to update cache entry: %w", err)
	}

	return expectOneRow(result, entry.ID())
}

// Delete soft-deletes a cache entry by ID
func (r *SearchCacheRepository) Delete(id string) error {
	query := `
		UPDATE search_cache
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return expectOneRow(result, id)
}

// List retrieves cache entries, most used first. Supported criteria: "catalog" (string).
func (r *SearchCacheRepository) List(criteria map[string]any) ([]*models.CachedSearch, error) {
	query := `SELECT` + searchCacheColumns + `
		FROM search_cache
		WHERE deleted_at IS NULL
	`

	args := []any{}
	if catalog, ok := criteria["catalog"].(string); ok && catalog != "" {
		query += " AND catalog = ?"
		args = append(args, catalog)
	}
	query += " ORDER BY hits DESC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.CachedSearch{}
	for rows.Next() {
		entry, err := scanCachedSearch(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Lookup returns the cached candidates for a query and counts the hit.
func (r *SearchCacheRepository) Lookup(catalog, queryKey string) ([]models.CatalogCandidate, error) {
	entry, err := r.GetByKey(catalog, queryKey)
	if err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(`UPDATE search_cache SET hits = hits + 1 WHERE id = ?`, entry.ID()); err != nil {
		return nil, fmt.Errorf("failed to count cache hit: %w", err)
	}
	return entry.Candidates(), nil
}

// Store upserts the candidates for a query.
func (r *SearchCacheRepository) Store(catalog, queryKey string, candidates []models.CatalogCandidate) error {
	sequence, err := NextSequence(r.db, "search_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	entry := models.NewCachedSearch(sequence, catalog, queryKey, candidates)
	entry.SetID(shared.GenerateID())
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	encoded, err := entry.EncodeCandidates()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO search_cache (
			id, sequence, catalog, query_key, candidates, hits, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (catalog, query_key) DO UPDATE SET
			candidates = excluded.candidates,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`

	_, err = r.db.Exec(query,
		entry.ID(), sequence, catalog, queryKey, encoded, entry.CreatedAt(), entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Clear soft-deletes every entry of a catalog and returns how many were removed.
func (r *SearchCacheRepository) Clear(catalog string) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE search_cache SET deleted_at = ? WHERE catalog = ? AND deleted_at IS NULL`,
		time.Now(), catalog,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return result.RowsAffected()
}

// scanCachedSearch scans a single row into a [models.CachedSearch]. [sql.ErrNoRows] is returned unwrapped.
func scanCachedSearch(row rowScanner) (*models.CachedSearch, error) {
	var (
		id         string
		sequence   int
		catalog    string
		queryKey   string
		candidates string
		hits       int
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &catalog, &queryKey, &candidates, &hits, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache entry: %w", err)
	}

	entry := models.NewCachedSearch(sequence, catalog, queryKey, nil)
	if err := entry.DecodeCandidates(candidates); err != nil {
		return nil, err
	}
	entry.SetID(id)
	entry.SetHits(hits)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}

	return entry, nil
}
