package formatter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/desertthunder/gilderr/internal/models"
)

// TrackPathMarker identifies a catalog track locator inside a URL.
const TrackPathMarker = "spotify.com/track/"

// Columns in persisted order.
var Columns = []string{"artist", "title", "year", "url"}

// headerTokens mark a leading header line. They match anywhere in the lower-cased line.
var headerTokens = []string{"artista", "titulo", "título", "año", "url"}

var trackIDPattern = regexp.MustCompile(`track/([A-Za-z0-9]+)(?:\?|$)`)

// splitLines splits text on newlines, trims each line and drops the empty ones.
//
// Tabs survive trimming so a row with an empty trailing column keeps its field count.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimFunc(l, isPadding)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func isPadding(r rune) bool {
	return r != '\t' && unicode.IsSpace(r)
}

// IsHeader reports whether line looks like a column header.
func IsHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, tok := range headerTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// Decode parses tab-delimited text into records. A header on the first non-empty line is skipped.
// Missing trailing columns are empty and columns past the fourth are ignored.
func Decode(text string) []models.SourceRecord {
	lines := splitLines(text)
	if len(lines) > 0 && IsHeader(lines[0]) {
		lines = lines[1:]
	}

	records := make([]models.SourceRecord, 0, len(lines))
	for _, l := range lines {
		var cols [4]string
		for i, c := range strings.SplitN(l, "\t", 5) {
			if i == 4 {
				break
			}
			cols[i] = strings.TrimSpace(c)
		}
		records = append(records, models.SourceRecord{Artist: cols[0], Title: cols[1], Year: cols[2], URL: cols[3]})
	}
	return records
}

// Encode joins each record's four fields with tabs and the rows with newlines. No header is written.
func Encode(records []models.SourceRecord) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.Artist)
		b.WriteByte('\t')
		b.WriteString(r.Title)
		b.WriteByte('\t')
		b.WriteString(r.Year)
		b.WriteByte('\t')
		b.WriteString(r.URL)
	}
	return b.String()
}

// IsTrackURL reports whether url contains the catalog track path.
func IsTrackURL(url string) bool {
	return strings.Contains(url, TrackPathMarker)
}

// ExtractTrackID returns the path segment after "track/" up to a "?" or the end of the string.
func ExtractTrackID(url string) (string, bool) {
	m := trackIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Resolved converts a record that already carries a track URL into a resolved record.
// It reports false when the URL lacks the track path or an extractable id.
func Resolved(r models.SourceRecord) (models.ResolvedRecord, bool) {
	if !IsTrackURL(r.URL) {
		return models.ResolvedRecord{}, false
	}
	id, ok := ExtractTrackID(r.URL)
	if !ok {
		return models.ResolvedRecord{}, false
	}
	return models.ResolvedRecord{Artist: r.Artist, Title: r.Title, Year: r.Year, URL: r.URL, TrackID: id}, true
}
