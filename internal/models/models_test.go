package models

import (
	"errors"
	"testing"
	"time"
)

func TestDroppedRecord(t *testing.T) {
	d := DroppedRecord{Artist: "Soda Stereo", Title: "De Música Ligera"}
	if got, want := d.String(), "Soda Stereo – De Música Ligera"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestResolvedRecord(t *testing.T) {
	r := []ResolvedRecord{
		{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975", URL: "https://open.spotify.com/track/abc", TrackID: "abc"},
		{Artist: "Blur", Title: "Song 2", Year: "1997", URL: "https://open.spotify.com/track/def", TrackID: "def"},
	}

	records := Records(r)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1] != (SourceRecord{Artist: "Blur", Title: "Song 2", Year: "1997", URL: "https://open.spotify.com/track/def"}) {
		t.Errorf("unexpected record %+v", records[1])
	}
}

func TestResolutionRun(t *testing.T) {
	t.Run("lifecycle", func(t *testing.T) {
		run := NewResolutionRun(1, "mix.tsv", 3)
		run.SetID("run-1")
		if run.Status() != RunPending {
			t.Errorf("expected pending, got %s", run.Status())
		}

		start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		run.Start(start)
		run.Complete(start.Add(2*time.Second), "mix_2026-01-01_10-00-02.tsv", 2, 1)

		if run.Status() != RunCompleted {
			t.Errorf("expected completed, got %s", run.Status())
		}
		if run.Duration() != 2*time.Second {
			t.Errorf("expected 2s duration, got %v", run.Duration())
		}
		if err := run.Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}
	})

	t.Run("fail records message", func(t *testing.T) {
		run := NewResolutionRun(1, "upload", 0)
		run.SetID("run-2")
		run.Fail(time.Now(), errors.New("line 2: invalid year"))
		if run.Status() != RunFailed || run.ErrorMessage() != "line 2: invalid year" {
			t.Errorf("unexpected run state %s %q", run.Status(), run.ErrorMessage())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(r *ResolutionRun)
		}{
			{name: "missing id", setup: func(r *ResolutionRun) { r.SetID("") }},
			{name: "bad status", setup: func(r *ResolutionRun) { r.SetStatus("paused") }},
			{name: "counts exceed total", setup: func(r *ResolutionRun) { r.SetRecordsResolved(2); r.SetRecordsDropped(2) }},
			{name: "negative", setup: func(r *ResolutionRun) { r.SetRecordsDropped(-1) }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				run := NewResolutionRun(1, "mix.tsv", 3)
				run.SetID("run-3")
				tt.setup(run)
				if err := run.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})
}

func TestCachedSearch(t *testing.T) {
	entry := NewCachedSearch(1, "spotify", "queen|bohemian rhapsody", []CatalogCandidate{
		{Name: "Bohemian Rhapsody", ArtistName: "Queen", ReleaseYear: 1975, YearKnown: true, ID: "abc", URL: "https://open.spotify.com/track/abc"},
	})
	entry.SetID("cache-1")

	if err := entry.Validate(); err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}

	raw, err := entry.EncodeCandidates()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	other := NewCachedSearch(1, "spotify", "queen|bohemian rhapsody", nil)
	if err := other.DecodeCandidates(raw); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(other.Candidates()) != 1 || other.Candidates()[0].ReleaseYear != 1975 || !other.Candidates()[0].HasReleaseYear() {
		t.Errorf("unexpected candidates %+v", other.Candidates())
	}

	empty := NewCachedSearch(1, "spotify", "x", nil)
	empty.SetID("cache-2")
	if err := empty.Validate(); err == nil {
		t.Error("expected empty candidate list to be rejected")
	}
}

func TestCatalogCandidate(t *testing.T) {
	t.Run("zero value has no release year", func(t *testing.T) {
		if (CatalogCandidate{Name: "Intro"}).HasReleaseYear() {
			t.Error("expected no release year")
		}
	})

	t.Run("year zero can be known", func(t *testing.T) {
		c := CatalogCandidate{Name: "Intro"}.WithReleaseYear(0)
		if !c.HasReleaseYear() || c.ReleaseYear != 0 {
			t.Errorf("expected known year 0, got %+v", c)
		}
	})
}
