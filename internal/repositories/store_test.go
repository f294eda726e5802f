package repositories

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/shared"
	th "github.com/desertthunder/gilderr/internal/testing"
)

const validTSV = "Queen\tBohemian Rhapsody\t1975\thttps://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC\nBlur\tSong 2\t1997\t"

func newTestStore(t *testing.T) *PlaylistStore {
	t.Helper()
	s, err := NewPlaylistStore(filepath.Join(t.TempDir(), "playlists"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"road trip", "road_trip"},
		{"mix-2024_v1.final", "mix-2024_v1.final"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"canción ñ", "canci_n__"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimestampedName(t *testing.T) {
	at := time.Date(2024, 3, 9, 4, 5, 6, 0, time.UTC)
	tests := []struct {
		original, want string
	}{
		{"road trip.tsv", "road_trip_2024-03-09_04-05-06.tsv"},
		{"MIX.TSV", "MIX_2024-03-09_04-05-06.tsv"},
		{"playlist_generated", "playlist_generated_2024-03-09_04-05-06.tsv"},
	}
	for _, tt := range tests {
		if got := TimestampedName(tt.original, at); got != tt.want {
			t.Errorf("TimestampedName(%q) = %q, want %q", tt.original, got, tt.want)
		}
	}
}

func TestPlaylistStore(t *testing.T) {
	t.Run("New requires a directory", func(t *testing.T) {
		if _, err := NewPlaylistStore(""); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		s := newTestStore(t)
		th.MustWriteFile(t, filepath.Join(s.Dir(), "b.tsv"), validTSV)
		th.MustWriteFile(t, filepath.Join(s.Dir(), "A.TSV"), validTSV)
		th.MustWriteFile(t, filepath.Join(s.Dir(), "notes.txt"), "x")
		os.Mkdir(filepath.Join(s.Dir(), "dir.tsv"), 0755)

		got, err := s.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"A.TSV", "b.tsv"}) {
			t.Errorf("unexpected listing %v", got)
		}
	})

	t.Run("List empty", func(t *testing.T) {
		got, err := newTestStore(t).List()
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil listing, got %v, %v", got, err)
		}
	})

	t.Run("Write and Read", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Write("mix.tsv", validTSV); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		got, err := s.Read("mix.tsv")
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if got != validTSV {
			t.Errorf("unexpected content %q", got)
		}
		if _, err := os.Stat(filepath.Join(s.Dir(), "mix.tsv.tmp")); !os.IsNotExist(err) {
			t.Error("temporary file should be renamed away")
		}
	})

	t.Run("Read missing", func(t *testing.T) {
		if _, err := newTestStore(t).Read("nope.tsv"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("rejects unsafe names", func(t *testing.T) {
		s := newTestStore(t)
		for _, name := range []string{"", ".tsv", "mix.txt", "../mix.tsv", "sub/mix.tsv", `sub\mix.tsv`, "..tsv"} {
			if _, err := s.Read(name); !errors.Is(err, shared.ErrInvalidFilename) {
				t.Errorf("Read(%q): expected ErrInvalidFilename, got %v", name, err)
			}
			if err := s.Write(name, validTSV); !errors.Is(err, shared.ErrInvalidFilename) {
				t.Errorf("Write(%q): expected ErrInvalidFilename, got %v", name, err)
			}
		}
	})

	t.Run("Save", func(t *testing.T) {
		s := newTestStore(t)
		at := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

		name, err := s.Save("road trip.tsv", validTSV, at)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if name != "road_trip_2024-03-09_14-05-06.tsv" {
			t.Errorf("unexpected name %s", name)
		}
		th.AssertFileExists(t, filepath.Join(s.Dir(), name))
		if got := th.MustReadFile(t, filepath.Join(s.Dir(), name)); got != validTSV {
			t.Errorf("unexpected saved content %q", got)
		}
	})

	t.Run("Save rejects invalid text", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Save("bad.tsv", "Queen\tBohemian Rhapsody\t75\t", time.Now())
		var verr *formatter.ValidationError
		if !errors.As(err, &verr) || !errors.Is(err, formatter.ErrInvalidYear) || verr.Line != 1 {
			t.Fatalf("expected invalid year at line 1, got %v", err)
		}

		names, _ := s.List()
		if len(names) != 0 {
			t.Errorf("nothing may be written on validation failure, got %v", names)
		}
	})
}
