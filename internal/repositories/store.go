package repositories

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/gofrs/flock"
)

const (
	playlistExt     = ".tsv"
	timestampLayout = "2006-01-02_15-04-05"
	lockFileName    = ".gilderr.lock"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// PlaylistStore keeps playlists as .tsv files in one directory.
//
// Writes take a file lock inside the directory so a running server and CLI invocations do not
// interleave.
type PlaylistStore struct {
	dir  string
	lock *flock.Flock
}

// NewPlaylistStore opens dir, creating it if needed.
func NewPlaylistStore(dir string) (*PlaylistStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: storage directory is empty", shared.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create playlist directory: %w", err)
	}
	return &PlaylistStore{dir: dir, lock: flock.New(filepath.Join(dir, lockFileName))}, nil
}

// Dir returns the directory the store reads and writes.
func (s *PlaylistStore) Dir() string { return s.dir }

// List returns the names of all playlist files, sorted.
func (s *PlaylistStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist directory: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && hasPlaylistExt(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the text of the named playlist.
func (s *PlaylistStore) Read(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read playlist: %w", err)
	}
	return string(data), nil
}

// Write stores text under name, replacing any existing file.
func (s *PlaylistStore) Write(name, text string) error {
	if err := checkName(name); err != nil {
		return err
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock playlist directory: %w", err)
	}
	defer s.lock.Unlock()

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	return nil
}

// Save validates text and writes it under a timestamped name derived from original.
// Nothing is written when validation fails. It returns the stored name.
func (s *PlaylistStore) Save(original, text string, at time.Time) (string, error) {
	if err := formatter.Validate(text); err != nil {
		return "", err
	}

	name := TimestampedName(original, at)
	if err := s.Write(name, text); err != nil {
		return "", err
	}
	return name, nil
}

// SanitizeFilename replaces every character outside [a-zA-Z0-9._-] with an underscore.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// TimestampedName builds "<sanitized base>_<YYYY-MM-DD_HH-MM-SS>.tsv" from an original file name.
func TimestampedName(original string, at time.Time) string {
	base := original
	if hasPlaylistExt(base) {
		base = base[:len(base)-len(playlistExt)]
	}
	return fmt.Sprintf("%s_%s%s", SanitizeFilename(base), at.Format(timestampLayout), playlistExt)
}

func hasPlaylistExt(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), playlistExt)
}

// checkName accepts bare file names ending in .tsv.
func checkName(name string) error {
	switch {
	case !hasPlaylistExt(name) || len(name) == len(playlistExt):
		return fmt.Errorf("%w: %q must end in %s", shared.ErrInvalidFilename, name, playlistExt)
	case strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || strings.HasPrefix(name, ".."):
		return fmt.Errorf("%w: %q must not contain a path", shared.ErrInvalidFilename, name)
	}
	return nil
}
