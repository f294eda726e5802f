package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/shared"
	"golang.org/x/time/rate"
)

// resolveJob is one record tagged with its input position.
type resolveJob struct {
	index  int
	record models.SourceRecord
}

// resolveOutcome carries a worker's answer back to the collector.
type resolveOutcome struct {
	index    int
	record   models.SourceRecord
	resolved models.ResolvedRecord
	ok       bool
}

// ResolveConcurrent resolves records with a bounded worker pool sharing one rate limiter.
//
// Results are reassembled by input index, so the outcome matches [Resolver.Resolve] and progress is
// still reported in strict input order. Records that already carry a track URL skip the limiter.
// On cancellation the result holds the contiguous prefix that finished and ctx.Err() is returned.
func (r *Resolver) ResolveConcurrent(ctx context.Context, records []models.SourceRecord, progress ProgressFunc) (*ResolveResult, error) {
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	total := len(records)
	result := newResolveResult(total)
	if total == 0 {
		return result, ctx.Err()
	}

	limiter := rate.NewLimiter(rate.Limit(r.rateLimit), 1)
	jobs := make(chan resolveJob, total)
	outcomes := make(chan resolveOutcome, total)

	workers := min(r.workers, total)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go r.resolveWorker(ctx, &wg, limiter, jobs, outcomes)
	}

	go func() {
		defer close(jobs)
		for i, rec := range records {
			select {
			case <-ctx.Done():
				return
			case jobs <- resolveJob{index: i, record: rec}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	pending := make(map[int]resolveOutcome, workers)
	next := 0
	for out := range outcomes {
		pending[out.index] = out
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			result.add(ready.record, ready.resolved, ready.ok)
			next++
			if progress != nil {
				progress(next, total)
			}
		}
	}

	if next < total {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		return result, fmt.Errorf("resolution stopped after %d of %d records", next, total)
	}
	return result, nil
}

// resolveWorker resolves jobs until the channel closes or ctx is done.
func (r *Resolver) resolveWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan resolveJob,
	outcomes chan<- resolveOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}

		out := resolveOutcome{index: job.index, record: job.record}
		if resolved, ok := formatter.Resolved(job.record); ok {
			out.resolved, out.ok = resolved, true
			outcomes <- out
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return
		}

		candidates, err := r.catalog.Search(ctx, job.record.Artist, job.record.Title, job.record.Year)
		if err != nil {
			r.logger.Warn("search failed", "artist", job.record.Artist, "title", job.record.Title, "error", err)
		} else {
			out.resolved, out.ok = r.bind(job.record, candidates)
		}
		outcomes <- out
	}
}
