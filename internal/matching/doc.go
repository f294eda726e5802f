// Package matching decides which catalog candidate, if any, corresponds to a requested song.
//
// It is built from three pure pieces:
//   - [Normalize] folds free-form text to lower-case ASCII letters, digits and single spaces.
//   - [Similarity] is the token-set overlap of two normalized titles.
//   - [Ranker] scores each [models.CatalogCandidate] against a [Query] and keeps the best one
//     when it clears [AcceptThreshold].
//
// Nothing in this package performs I/O; a [Ranker] given a logger only emits debug traces.
package matching
