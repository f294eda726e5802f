// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/gilderr/internal/models"
)

// SearchCall records one call made to a [MockCatalog].
type SearchCall struct {
	Artist string
	Title  string
	Year   string
}

// MockCatalog is a test double for services.Catalog.
//
// Results are keyed by title. Titles listed in Errors fail with that error. Unknown titles return no
// candidates.
type MockCatalog struct {
	Results map[string][]models.CatalogCandidate
	Errors  map[string]error
	// Hook runs before each search returns; use it to observe or block calls.
	Hook func(ctx context.Context, call SearchCall)

	mu    sync.Mutex
	calls []SearchCall
}

// NewMockCatalog creates a MockCatalog with the given results.
func NewMockCatalog(results map[string][]models.CatalogCandidate) *MockCatalog {
	return &MockCatalog{Results: results, Errors: map[string]error{}}
}

func (m *MockCatalog) Search(ctx context.Context, artist, title, year string) ([]models.CatalogCandidate, error) {
	call := SearchCall{Artist: artist, Title: title, Year: year}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if m.Hook != nil {
		m.Hook(ctx, call)
	}
	if err := m.Errors[title]; err != nil {
		return nil, err
	}
	return m.Results[title], nil
}

func (m *MockCatalog) Name() string { return "mock" }

// Calls returns a copy of the recorded calls.
func (m *MockCatalog) Calls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SearchCall(nil), m.calls...)
}

// Candidate builds an exact catalog candidate for a record with the given track id.
func Candidate(artist, title string, year int, id string) models.CatalogCandidate {
	c := models.CatalogCandidate{
		Name:       title,
		ArtistName: artist,
		ID:         id,
		URL:        "https://open.spotify.com/track/" + id,
	}
	if year != 0 {
		c = c.WithReleaseYear(year)
	}
	return c
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
