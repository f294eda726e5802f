// package formatter reads and writes playlist files: the tab-delimited codec, its validator, and
// exporters to CSV, Markdown and plain text.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/gilderr/internal/models"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat maps a flag value to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv, markdown or txt)", s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".csv"
	}
}

// Playlist is a named, ordered set of records as stored on disk.
type Playlist struct {
	Name    string
	Records []models.SourceRecord
}

// Title is the playlist name without its .tsv extension.
func (p Playlist) Title() string {
	return strings.TrimSuffix(p.Name, filepath.Ext(p.Name))
}

// Missing counts records without a URL.
func (p Playlist) Missing() int {
	n := 0
	for _, r := range p.Records {
		if r.URL == "" {
			n++
		}
	}
	return n
}

// ExportToCSV converts a playlist to CSV with a header row: Artist, Title, Year, URL, Track ID.
func ExportToCSV(p Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Artist", "Title", "Year", "URL", "Track ID"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range p.Records {
		id, _ := ExtractTrackID(r.URL)
		if err := writer.Write([]string{r.Artist, r.Title, r.Year, r.URL, id}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a playlist as a numbered Markdown list linking resolved tracks.
func ExportToMarkdown(p Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Title())
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(p.Records))
	if missing := p.Missing(); missing > 0 {
		fmt.Fprintf(&buf, "**Unresolved**: %d\n", missing)
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, r := range p.Records {
		line := fmt.Sprintf("%s - %s", r.Artist, r.Title)
		if r.URL != "" {
			line = fmt.Sprintf("[%s](%s)", line, r.URL)
		}
		if r.Year != "" {
			line += fmt.Sprintf(" (%s)", r.Year)
		}
		fmt.Fprintf(&buf, "%d. %s\n", i+1, line)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a playlist as plain text.
func ExportToText(p Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", p.Title())
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(p.Records))

	for i, r := range p.Records {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, r.Artist, r.Title)
	}

	return buf.Bytes(), nil
}

// Export renders p in format f.
func Export(p Playlist, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(p)
	case FormatMarkdown:
		return ExportToMarkdown(p)
	case FormatText:
		return ExportToText(p)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// WriteExport renders p in format f and writes it to path.
//
// Defaults to {playlist title}{extension} in the working directory.
func WriteExport(p Playlist, f Format, path string) (string, error) {
	if path == "" {
		path = p.Title() + f.Extension()
	}

	data, err := Export(p, f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
