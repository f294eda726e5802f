// Package tasks resolves playlists against a music catalog with real-time progress reporting.
//
// # Resolution
//
// [Resolver.Resolve] walks a batch strictly in order:
//
//  1. Records that already carry a track URL pass through without a search
//  2. Everything else is searched and ranked with [matching.Ranker]
//  3. A record with no reliable match, or whose search failed, is dropped
//  4. progress(done, total) fires after every record, then the resolver waits for the configured delay
//
// [Resolver.ResolveConcurrent] keeps the same outcome and progress order while running several
// searches at once behind a shared [rate.Limiter].
//
// # Engine
//
// [PlaylistEngine] chains decode, resolve, encode, validate and store, and records each batch through
// a [RunRecorder]. Validation errors abort the whole batch.
//
// # Progress Reporting
//
// [ProgressUpdate] values are sent on channels with select/default so reporting never blocks.
//
// # Search Caching
//
// [CachingCatalog] stores non-empty candidate lists keyed by [matching.QueryKey]. Cache errors are
// logged and ignored.
package tasks
