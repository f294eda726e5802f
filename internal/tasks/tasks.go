// package tasks resolves playlists of (artist, title, year) records against a music catalog.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/matching"
	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/services"
	"github.com/desertthunder/gilderr/internal/shared"
)

// DefaultDelay is awaited after every record to stay under the catalog's rate limit.
const DefaultDelay = 80 * time.Millisecond

// ProgressFunc is called once per record, in input order, with the number of records processed so far.
type ProgressFunc func(done, total int)

// ResolverOpts configures a [Resolver].
type ResolverOpts struct {
	Delay     time.Duration    // pause after each record; zero uses DefaultDelay, negative disables
	Workers   int              // pool size used only by ResolveConcurrent; zero means 4, capped at 10
	RateLimit float64          // searches per second used only by ResolveConcurrent (default: 10)
	Policy    *matching.Policy // scoring policy (default: matching.DefaultPolicy)
	Logger    *log.Logger
}

// Resolver drives the [matching.Ranker] over a batch of records.
type Resolver struct {
	catalog   services.Catalog
	ranker    *matching.Ranker
	delay     time.Duration
	workers   int
	rateLimit float64
	logger    *log.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// ResolveResult partitions a batch into resolved and dropped records. Both keep input order.
type ResolveResult struct {
	Resolved []models.ResolvedRecord
	Dropped  []models.DroppedRecord
}

// NewResolver creates a Resolver searching catalog. Resolve is always sequential; Workers and
// RateLimit only shape ResolveConcurrent, which callers opt into.
func NewResolver(catalog services.Catalog, opts ResolverOpts) *Resolver {
	delay := opts.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	if delay < 0 {
		delay = 0
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > 10 {
		workers = 10
	}

	rateLimit := opts.RateLimit
	if rateLimit <= 0 {
		rateLimit = 10.0
	}

	policy := matching.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &Resolver{
		catalog:   catalog,
		ranker:    matching.NewRanker(policy, logger),
		delay:     delay,
		workers:   workers,
		rateLimit: rateLimit,
		logger:    logger,
		sleep:     sleepWithContext,
	}
}

// Resolve processes records one at a time. Each record either passes through (it already carries a
// track URL), is bound to the best ranked candidate, or is dropped. Search failures drop the record
// and never abort the batch.
//
// progress, when non-nil, is called after every record. When ctx is cancelled between records the
// partial result is returned along with ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, records []models.SourceRecord, progress ProgressFunc) (*ResolveResult, error) {
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	result := newResolveResult(len(records))
	total := len(records)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		resolved, ok := r.resolveOne(ctx, rec)
		result.add(rec, resolved, ok)

		if progress != nil {
			progress(i+1, total)
		}

		if r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

// resolveOne returns the resolved form of rec, or false when it must be dropped.
func (r *Resolver) resolveOne(ctx context.Context, rec models.SourceRecord) (models.ResolvedRecord, bool) {
	if resolved, ok := formatter.Resolved(rec); ok {
		r.logger.Debug("record already resolved", "artist", rec.Artist, "title", rec.Title, "track_id", resolved.TrackID)
		return resolved, true
	}

	candidates, err := r.catalog.Search(ctx, rec.Artist, rec.Title, rec.Year)
	if err != nil {
		r.logger.Warn("search failed", "artist", rec.Artist, "title", rec.Title, "error", err)
		return models.ResolvedRecord{}, false
	}

	return r.bind(rec, candidates)
}

// bind ranks candidates for rec and builds the resolved record from the winner.
func (r *Resolver) bind(rec models.SourceRecord, candidates []models.CatalogCandidate) (models.ResolvedRecord, bool) {
	match, ok := r.ranker.Rank(matching.QueryFor(rec), candidates)
	if !ok {
		r.logger.Warn("dropping record", "artist", rec.Artist, "title", rec.Title, "candidates", len(candidates))
		return models.ResolvedRecord{}, false
	}

	c := match.Candidate
	trackID := c.ID
	if id, ok := formatter.ExtractTrackID(c.URL); ok && trackID == "" {
		trackID = id
	}
	if !formatter.IsTrackURL(c.URL) || trackID == "" {
		r.logger.Warn("dropping record", "artist", rec.Artist, "title", rec.Title, "reason", "candidate has no track url", "url", c.URL)
		return models.ResolvedRecord{}, false
	}

	return models.ResolvedRecord{
		Artist:  rec.Artist,
		Title:   rec.Title,
		Year:    rec.Year,
		URL:     c.URL,
		TrackID: trackID,
	}, true
}

func newResolveResult(n int) *ResolveResult {
	return &ResolveResult{
		Resolved: make([]models.ResolvedRecord, 0, n),
		Dropped:  []models.DroppedRecord{},
	}
}

func (res *ResolveResult) add(rec models.SourceRecord, resolved models.ResolvedRecord, ok bool) {
	if ok {
		res.Resolved = append(res.Resolved, resolved)
		return
	}
	res.Dropped = append(res.Dropped, models.DroppedRecord{Artist: rec.Artist, Title: rec.Title})
}

// Records returns the resolved records as persistable rows.
func (res *ResolveResult) Records() []models.SourceRecord {
	return models.Records(res.Resolved)
}

// DroppedStrings renders every dropped record as "artist – title".
func (res *ResolveResult) DroppedStrings() []string {
	out := make([]string, len(res.Dropped))
	for i, d := range res.Dropped {
		out[i] = d.String()
	}
	return out
}

// Summary returns the user-facing outcome of a batch and its log level.
func (res *ResolveResult) Summary() (log.Level, string) {
	if n := len(res.Dropped); n > 0 {
		return log.WarnLevel, fmt.Sprintf("%d songs removed, not found", n)
	}
	return log.InfoLevel, "playlist completed"
}

// sleepWithContext waits for d or until ctx is done.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
