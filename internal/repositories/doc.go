// Package repositories implements persistence for resolution history, the search cache and playlist files.
//
// SQLite repositories handle CRUD operations with atomic sequence generation for human-readable ordering.
// All of them support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : one row per resolution batch with status and counts
//   - [SearchCacheRepository] : catalog candidates keyed by normalized query, with hit counts
//   - [PlaylistStore] : .tsv files in a single directory, written under a file lock
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
