package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
)

// retrier re-sends requests that fail with a transport error, 429 or a 5xx status.
type retrier struct {
	maxRetries  int
	baseBackoff time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *log.Logger
}

func newRetrier(logger *log.Logger) retrier {
	return retrier{
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		sleep:       sleepWithContext,
		logger:      logger,
	}
}

// do sends the request produced by build, retrying up to maxRetries times. build is called once per
// attempt so every attempt gets a fresh request.
func (r retrier) do(ctx context.Context, client *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request canceled: %w", err)
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		wait, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		if resp != nil {
			resp.Body.Close()
		}
		if attempt >= r.maxRetries {
			if err != nil {
				return nil, fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
			}
			return nil, fmt.Errorf("request failed after %d attempts: status %d", attempt+1, resp.StatusCode)
		}

		if wait <= 0 {
			wait = r.baseBackoff * time.Duration(1<<attempt)
		}
		if r.logger != nil {
			if err != nil {
				r.logger.Warn("retrying request", "attempt", attempt+1, "wait", wait, "err", err)
			} else {
				r.logger.Warn("retrying request", "attempt", attempt+1, "wait", wait, "status", resp.StatusCode)
			}
		}

		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()), true
	}
	return 0, false
}

// parseRetryAfter reads a Retry-After value given in seconds or as an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if until := when.Sub(now); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
