package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/gilderr/internal/models"
	th "github.com/desertthunder/gilderr/internal/testing"
)

func TestDecode(t *testing.T) {
	t.Run("header detection", func(t *testing.T) {
		text := "Artista\tTitulo\tAño\tUrl\nQueen\tBohemian Rhapsody\t1975\thttps://open.spotify.com/track/abc123"
		got := Decode(text)
		want := []models.SourceRecord{{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975", URL: "https://open.spotify.com/track/abc123"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Decode() = %+v, want %+v", got, want)
		}
	})

	tests := []struct {
		name string
		text string
		want []models.SourceRecord
	}{
		{
			name: "no header",
			text: "Queen\tBohemian Rhapsody\t1975\t\nBlur\tSong 2\t1997\t",
			want: []models.SourceRecord{
				{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975"},
				{Artist: "Blur", Title: "Song 2", Year: "1997"},
			},
		},
		{
			name: "blank lines and carriage returns",
			text: "\r\n  \nQueen\tBohemian Rhapsody\t1975\r\n\n",
			want: []models.SourceRecord{{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975"}},
		},
		{
			name: "missing trailing columns",
			text: "Queen\tBohemian Rhapsody",
			want: []models.SourceRecord{{Artist: "Queen", Title: "Bohemian Rhapsody"}},
		},
		{
			name: "extra columns ignored",
			text: "Queen\tBohemian Rhapsody\t1975\thttps://open.spotify.com/track/x\tnotes\tmore",
			want: []models.SourceRecord{{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975", URL: "https://open.spotify.com/track/x"}},
		},
		{
			name: "columns trimmed",
			text: "Queen \t Bohemian Rhapsody \t 1975 \t",
			want: []models.SourceRecord{{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975"}},
		},
		{
			name: "empty leading column keeps positions",
			text: "\tIntro\t2001\t",
			want: []models.SourceRecord{{Title: "Intro", Year: "2001"}},
		},
		{
			name: "header only",
			text: "artista\ttítulo\taño\turl\n",
			want: []models.SourceRecord{},
		},
		{
			name: "empty",
			text: "",
			want: []models.SourceRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	records := []models.SourceRecord{
		{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975", URL: "https://open.spotify.com/track/abc"},
		{Artist: "Soda Stereo", Title: "De Música Ligera", Year: "1990"},
	}

	got := Encode(records)
	want := "Queen\tBohemian Rhapsody\t1975\thttps://open.spotify.com/track/abc\nSoda Stereo\tDe Música Ligera\t1990\t"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}

	t.Run("round trip", func(t *testing.T) {
		back := Decode(Encode(records))
		if !reflect.DeepEqual(back, records) {
			t.Errorf("round trip mismatch: %+v", back)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := Encode(nil); got != "" {
			t.Errorf("expected empty text, got %q", got)
		}
	})

	t.Run("encoded output validates", func(t *testing.T) {
		if err := Validate(got); err != nil {
			t.Errorf("expected encoded records to validate, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind error
		line int
	}{
		{name: "valid", text: "Queen\tBohemian Rhapsody\t1975\thttps://open.spotify.com/track/abc"},
		{name: "valid with empty url", text: "Queen\tBohemian Rhapsody\t1975\t"},
		{name: "empty input", text: "", kind: ErrEmptyFile},
		{name: "whitespace only", text: "  \n\r\n \n", kind: ErrEmptyFile},
		{name: "three fields", text: "Queen\tBohemian Rhapsody\t1975", kind: ErrMalformedRow, line: 1},
		{name: "two digit year", text: "Queen\tBohemian Rhapsody\t75\t", kind: ErrInvalidYear, line: 1},
		{name: "missing title", text: "Queen\t\t1975\t", kind: ErrMissingField, line: 1},
		{name: "missing artist", text: "\tBohemian Rhapsody\t1975\t", kind: ErrMissingField, line: 1},
		{name: "foreign url", text: "Queen\tBohemian Rhapsody\t1975\thttps://example.com/song", kind: ErrInvalidURL, line: 1},
		{
			name: "line numbers skip blanks",
			text: "Queen\tBohemian Rhapsody\t1975\t\n\nBlur\tSong 2\t97\t",
			kind: ErrInvalidYear, line: 2,
		},
		{
			name: "first violation wins",
			text: "Queen\tBohemian Rhapsody\t1975\t\nBlur\tSong 2\n\tx\t1\t",
			kind: ErrMalformedRow, line: 2,
		},
		{name: "header is not skipped", text: "Artista\tTitulo\tAño\tUrl\nQueen\tBohemian Rhapsody\t1975\t", kind: ErrInvalidYear, line: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			if tt.kind == nil {
				if err != nil {
					t.Fatalf("expected valid input, got %v", err)
				}
				return
			}

			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, verr.Line)
			}
		})
	}

	t.Run("message names line and reason", func(t *testing.T) {
		err := Validate("Queen\tBohemian Rhapsody\t75\t")
		if got, want := err.Error(), "line 1: year must be a 4 digit number"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
}

func TestTrackURLs(t *testing.T) {
	t.Run("ExtractTrackID", func(t *testing.T) {
		tests := []struct {
			url  string
			id   string
			find bool
		}{
			{url: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc", id: "4uLU6hMCjMI75M1A2tKUQC", find: true},
			{url: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", id: "4uLU6hMCjMI75M1A2tKUQC", find: true},
			{url: "https://open.spotify.com/intl-es/track/7tFiyTwD0nx5a1eklYtX2J", id: "7tFiyTwD0nx5a1eklYtX2J", find: true},
			{url: "https://open.spotify.com/track/", find: false},
			{url: "https://open.spotify.com/album/1A2GTWGtFfWp7KSQTwWOyo", find: false},
			{url: "https://open.spotify.com/track/abc-def", find: false},
			{url: "", find: false},
		}
		for _, tt := range tests {
			id, ok := ExtractTrackID(tt.url)
			if ok != tt.find || id != tt.id {
				t.Errorf("ExtractTrackID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.id, tt.find)
			}
		}
	})

	t.Run("Resolved", func(t *testing.T) {
		r, ok := Resolved(models.SourceRecord{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975", URL: "https://open.spotify.com/track/abc?si=1"})
		if !ok || r.TrackID != "abc" {
			t.Errorf("unexpected resolved record %+v (ok=%v)", r, ok)
		}

		if _, ok := Resolved(models.SourceRecord{URL: "https://open.spotify.com/track/"}); ok {
			t.Error("expected marker without id to be rejected")
		}
		if _, ok := Resolved(models.SourceRecord{URL: "https://example.com/track/abc"}); ok {
			t.Error("expected foreign host to be rejected")
		}
	})
}

func samplePlaylist() Playlist {
	return Playlist{
		Name: "road_trip_2026-01-02_10-11-12.tsv",
		Records: []models.SourceRecord{
			{Artist: "Queen", Title: "Bohemian Rhapsody", Year: "1975", URL: "https://open.spotify.com/track/abc"},
			{Artist: "Blur", Title: "Song 2", Year: "1997"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(rows))
		}
		if strings.Join(rows[0], ",") != "Artist,Title,Year,URL,Track ID" {
			t.Errorf("unexpected header %v", rows[0])
		}
		if rows[1][4] != "abc" {
			t.Errorf("expected track id abc, got %q", rows[1][4])
		}
		if rows[2][3] != "" || rows[2][4] != "" {
			t.Errorf("expected unresolved row to have empty url and id, got %v", rows[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"# road_trip_2026-01-02_10-11-12",
			"**Tracks**: 2",
			"**Unresolved**: 1",
			"1. [Queen - Bohemian Rhapsody](https://open.spotify.com/track/abc) (1975)",
			"2. Blur - Song 2 (1997)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		if !strings.HasPrefix(output, "Playlist: road_trip_2026-01-02_10-11-12\nTracks: 2\n\n") {
			t.Errorf("unexpected text header: %q", output)
		}
		if !strings.Contains(output, "2. Blur - Song 2\n") {
			t.Errorf("text missing second track: %q", output)
		}
	})

	t.Run("ParseFormat", func(t *testing.T) {
		tests := map[string]Format{"csv": FormatCSV, "MD": FormatMarkdown, "markdown": FormatMarkdown, "text": FormatText, "txt": FormatText}
		for in, want := range tests {
			got, err := ParseFormat(in)
			if err != nil || got != want {
				t.Errorf("ParseFormat(%q) = (%q, %v), want %q", in, got, err, want)
			}
		}
		if _, err := ParseFormat("xml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")
		written, err := WriteExport(samplePlaylist(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		if !strings.Contains(th.MustReadFile(t, path), "## Tracks") {
			t.Error("export file missing track section")
		}
	})

	t.Run("WriteExport unwritable path", func(t *testing.T) {
		_, err := WriteExport(samplePlaylist(), FormatText, filepath.Join(t.TempDir(), "missing", "out.txt"))
		if err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}
