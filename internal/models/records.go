package models

import "fmt"

// SourceRecord is one requested song as read from TSV text.
//
// Year is kept as text: it may be missing or unparsable in the input.
type SourceRecord struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	URL    string `json:"url"`
}

// CatalogCandidate is one result of a catalog search. YearKnown is false when the catalog did not
// report a parsable date, and ReleaseYear is then ignored.
type CatalogCandidate struct {
	Name        string `json:"name"`
	ArtistName  string `json:"artist_name"`
	ReleaseYear int    `json:"release_year"`
	YearKnown   bool   `json:"year_known"`
	ID          string `json:"id"`
	URL         string `json:"url"`
}

// HasReleaseYear reports whether the catalog supplied a release year.
func (c CatalogCandidate) HasReleaseYear() bool {
	return c.YearKnown
}

// WithReleaseYear returns c with year recorded as a known release year.
func (c CatalogCandidate) WithReleaseYear(year int) CatalogCandidate {
	c.ReleaseYear = year
	c.YearKnown = true
	return c
}

// ResolvedRecord is a song bound to a catalog track. URL always carries a track locator and TrackID
// is the identifier extracted from it (or reported by the catalog).
type ResolvedRecord struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Year    string `json:"year"`
	URL     string `json:"url"`
	TrackID string `json:"track_id"`
}

// Record returns the four persisted columns.
func (r ResolvedRecord) Record() SourceRecord {
	return SourceRecord{Artist: r.Artist, Title: r.Title, Year: r.Year, URL: r.URL}
}

// DroppedRecord is a song the pipeline could not resolve. It only feeds the summary.
type DroppedRecord struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// String renders the record as "artist – title" (en dash).
func (d DroppedRecord) String() string {
	return fmt.Sprintf("%s – %s", d.Artist, d.Title)
}

// Records converts resolved records back to their persisted columns, preserving order.
func Records(resolved []ResolvedRecord) []SourceRecord {
	out := make([]SourceRecord, len(resolved))
	for i, r := range resolved {
		out[i] = r.Record()
	}
	return out
}
