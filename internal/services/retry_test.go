package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetrier(t *testing.T) {
	newRequest := func(url string) func() (*http.Request, error) {
		return func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, url, nil)
		}
	}

	t.Run("retries 429 then succeeds", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		var waits []time.Duration
		r := newRetrier(nil)
		r.sleep = func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}

		resp, err := r.do(context.Background(), srv.Client(), newRequest(srv.URL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
		if len(waits) != 1 || waits[0] != 2*time.Second {
			t.Errorf("expected a single Retry-After wait of 2s, got %v", waits)
		}
	})

	t.Run("exponential backoff then gives up", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		var waits []time.Duration
		r := newRetrier(nil)
		r.sleep = func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}

		_, err := r.do(context.Background(), srv.Client(), newRequest(srv.URL))
		if err == nil {
			t.Fatal("expected error after exhausting retries")
		}
		if calls != defaultMaxRetries+1 {
			t.Errorf("expected %d calls, got %d", defaultMaxRetries+1, calls)
		}
		want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
		if len(waits) != len(want) {
			t.Fatalf("expected waits %v, got %v", want, waits)
		}
		for i := range want {
			if waits[i] != want[i] {
				t.Errorf("wait %d: expected %v, got %v", i, want[i], waits[i])
			}
		}
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		resp, err := newRetrier(nil).do(context.Background(), srv.Client(), newRequest(srv.URL))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest || calls != 1 {
			t.Errorf("expected one 400 response, got status %d after %d calls", resp.StatusCode, calls)
		}
	})

	t.Run("canceled context stops waiting", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		r := newRetrier(nil)
		r.sleep = func(ctx context.Context, d time.Duration) error {
			cancel()
			return sleepWithContext(ctx, d)
		}

		_, err := r.do(ctx, srv.Client(), newRequest(srv.URL))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{in: "", want: 0},
		{in: "3", want: 3 * time.Second},
		{in: "-1", want: 0},
		{in: now.Add(5 * time.Second).Format(http.TimeFormat), want: 5 * time.Second},
		{in: now.Add(-5 * time.Second).Format(http.TimeFormat), want: 0},
		{in: "soon", want: 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
