// Package models defines domain entities and persistence interfaces for gilderr.
//
// The package contains two categories of types:
//
// 1. Records: values that flow through the resolution pipeline
//   - [SourceRecord] : one requested song read from TSV text
//   - [CatalogCandidate] : one search result from the catalog
//   - [ResolvedRecord] : a song bound to a catalog track URL and id
//   - [DroppedRecord] : a song that could not be resolved
//
// 2. Persistent Entities: database-backed models
//   - [ResolutionRun] : one batch run through the pipeline with its totals
//   - [CachedSearch] : catalog candidates cached by normalized query
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
