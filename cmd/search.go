package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/matching"
	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/urfave/cli/v3"
)

type scoredCandidate struct {
	Name     string  `json:"name"`
	Artist   string  `json:"artist"`
	Year     *int    `json:"year,omitempty"`
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Score    float64 `json:"score"`
	Selected bool    `json:"selected"`
}

// Search runs one catalog search and prints every candidate with its score and the selection.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	q := matching.Query{Artist: cmd.String("artist"), Title: cmd.String("title"), Year: cmd.String("year")}
	if q.Title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	catalog, err := r.searchCatalog()
	if err != nil {
		return err
	}

	candidates, err := catalog.Search(ctx, q.Artist, q.Title, q.Year)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	ranker := matching.NewRanker(matching.DefaultPolicy(), r.logger)
	matches := ranker.Evaluate(q, candidates)
	threshold := ranker.Policy().Threshold

	// first strictly highest score wins, like Ranker.Rank
	bestIdx := -1
	for i, m := range matches {
		if bestIdx < 0 || m.Score > matches[bestIdx].Score {
			bestIdx = i
		}
	}
	accepted := bestIdx >= 0 && matches[bestIdx].Score >= threshold

	scored := make([]scoredCandidate, len(matches))
	for i, m := range matches {
		c := m.Candidate
		scored[i] = scoredCandidate{
			Name:     c.Name,
			Artist:   c.ArtistName,
			Year:     releaseYear(c),
			ID:       c.ID,
			URL:      c.URL,
			Score:    m.Score,
			Selected: accepted && i == bestIdx,
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(scored, true)
	}

	if len(scored) == 0 {
		return r.writePlain("No candidates for %s – %s\n", q.Artist, q.Title)
	}

	rows := make([][]string, len(scored))
	for i, s := range scored {
		year, mark := "", ""
		if s.Year != nil {
			year = strconv.Itoa(*s.Year)
		}
		if s.Selected {
			mark = "✓"
		}
		rows[i] = []string{mark, s.Name, s.Artist, year, strconv.FormatFloat(s.Score, 'f', 2, 64), s.ID}
	}
	r.writePlain("%s\n", renderTable(
		[]string{"", "Track", "Artist", "Year", "Score", "ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))

	if !accepted {
		return r.writePlain("⚠ No reliable match (best %.2f, threshold %.2f)\n", matches[bestIdx].Score, threshold)
	}
	best := matches[bestIdx].Candidate
	return r.writePlain("✓ Selected %s – %s (%s)\n", best.ArtistName, best.Name, best.URL)
}

type trackSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Year     *int   `json:"year,omitempty"`
	Duration string `json:"duration"`
	URL      string `json:"url"`
}

// TrackInfo looks up one catalog track by id or track URL.
func (r *Runner) TrackInfo(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("track")
	if ref == "" {
		return fmt.Errorf("%w: track id or URL", shared.ErrMissingArgument)
	}
	id := ref
	if extracted, ok := formatter.ExtractTrackID(ref); ok {
		id = extracted
	}

	svc, err := r.spotifyService()
	if err != nil {
		return err
	}

	track, err := svc.Track(ctx, id)
	if err != nil {
		return err
	}

	c := track.Candidate()
	d := time.Duration(track.DurationMS) * time.Millisecond
	summary := trackSummary{
		ID:       c.ID,
		Name:     c.Name,
		Artist:   c.ArtistName,
		Album:    track.Album.Name,
		Year:     releaseYear(c),
		Duration: fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60),
		URL:      c.URL,
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}

	r.writePlain("%s – %s\n", summary.Artist, summary.Name)
	if summary.Year != nil {
		r.writePlain("  Album:    %s (%d)\n", summary.Album, *summary.Year)
	} else {
		r.writePlain("  Album:    %s\n", summary.Album)
	}
	r.writePlain("  Duration: %s\n", summary.Duration)
	return r.writePlain("  URL:      %s\n", summary.URL)
}

// releaseYear is nil when the catalog reported no year.
func releaseYear(c models.CatalogCandidate) *int {
	if !c.HasReleaseYear() {
		return nil
	}
	y := c.ReleaseYear
	return &y
}
