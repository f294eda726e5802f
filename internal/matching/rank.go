package matching

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/models"
)

// Default scoring constants.
const (
	ArtistExactBonus      = 5.0
	ArtistPartialBonus    = 3.0
	TitleExactBonus       = 5.0
	TitleSimilarityWeight = 4.0
	BadVersionPenalty     = 4.0
	YearExactBonus        = 2.0
	YearNearBonus         = 1.0
	YearMismatchPenalty   = 1.0
	AcceptThreshold       = 3.0
)

// BadVersionMarkers flag live, karaoke, instrumental, remastered and edited variants.
// They match anywhere in the candidate's display name, ignoring case.
var BadVersionMarkers = []string{"live", "en vivo", "karaoke", "instrumental", "remaster", "edit", "version"}

// Policy holds the weights used to score candidates.
type Policy struct {
	ArtistExact     float64
	ArtistPartial   float64
	TitleExact      float64
	TitleSimilarity float64
	BadVersion      float64
	YearExact       float64
	YearNear        float64
	YearMismatch    float64
	Threshold       float64
	Markers         []string
}

// DefaultPolicy returns the standard scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		ArtistExact:     ArtistExactBonus,
		ArtistPartial:   ArtistPartialBonus,
		TitleExact:      TitleExactBonus,
		TitleSimilarity: TitleSimilarityWeight,
		BadVersion:      BadVersionPenalty,
		YearExact:       YearExactBonus,
		YearNear:        YearNearBonus,
		YearMismatch:    YearMismatchPenalty,
		Threshold:       AcceptThreshold,
		Markers:         BadVersionMarkers,
	}
}

// Query is the textual reference being resolved.
type Query struct {
	Artist string
	Title  string
	Year   string
}

// QueryFor builds a Query from a source record.
func QueryFor(r models.SourceRecord) Query {
	return Query{Artist: r.Artist, Title: r.Title, Year: r.Year}
}

// Match is a candidate with its score.
type Match struct {
	Candidate models.CatalogCandidate
	Score     float64
}

// Ranker scores candidates under a [Policy].
type Ranker struct {
	policy Policy
	logger *log.Logger
}

// NewRanker creates a Ranker. A nil logger disables tracing.
func NewRanker(policy Policy, logger *log.Logger) *Ranker {
	return &Ranker{policy: policy, logger: logger}
}

// Policy returns the ranker's policy.
func (r *Ranker) Policy() Policy {
	return r.policy
}

// Rank picks the best candidate for q using [DefaultPolicy].
func Rank(q Query, candidates []models.CatalogCandidate) (Match, bool) {
	return NewRanker(DefaultPolicy(), nil).Rank(q, candidates)
}

// Score returns the score of c against q.
func (p Policy) Score(q Query, c models.CatalogCandidate) float64 {
	return p.score(prepare(q), c)
}

type preparedQuery struct {
	artist  string
	title   string
	year    int
	hasYear bool
}

func prepare(q Query) preparedQuery {
	year, err := strconv.Atoi(strings.TrimSpace(q.Year))
	return preparedQuery{
		artist:  Normalize(q.Artist),
		title:   Normalize(q.Title),
		year:    year,
		hasYear: err == nil,
	}
}

func (p Policy) score(q preparedQuery, c models.CatalogCandidate) float64 {
	var score float64

	artist := Normalize(c.ArtistName)
	switch {
	case artist == q.artist:
		score += p.ArtistExact
	case strings.Contains(artist, q.artist) || strings.Contains(q.artist, artist):
		score += p.ArtistPartial
	}

	title := Normalize(c.Name)
	if title == q.title {
		score += p.TitleExact
	} else {
		score += p.TitleSimilarity * Similarity(title, q.title)
	}

	if p.isBadVersion(c.Name) {
		score -= p.BadVersion
	}

	if q.hasYear && c.HasReleaseYear() {
		switch diff := math.Abs(float64(c.ReleaseYear - q.year)); diff {
		case 0:
			score += p.YearExact
		case 1:
			score += p.YearNear
		default:
			score -= p.YearMismatch
		}
	}

	return score
}

func (p Policy) isBadVersion(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range p.Markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Evaluate scores every candidate in order.
func (r *Ranker) Evaluate(q Query, candidates []models.CatalogCandidate) []Match {
	pq := prepare(q)
	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		matches[i] = Match{Candidate: c, Score: r.policy.score(pq, c)}
		if r.logger != nil {
			r.logger.Debug("evaluated candidate",
				"track", c.Name, "artist", c.ArtistName, "year", c.ReleaseYear, "score", matches[i].Score)
		}
	}
	return matches
}

// Rank returns the highest scoring candidate. Ties keep the first candidate seen.
// It reports false when there are no candidates or the best score is below the threshold.
func (r *Ranker) Rank(q Query, candidates []models.CatalogCandidate) (Match, bool) {
	matches := r.Evaluate(q, candidates)
	best, ok := Best(matches)
	if !ok || best.Score < r.policy.Threshold {
		if r.logger != nil {
			r.logger.Debug("no reliable match", "artist", q.Artist, "title", q.Title, "candidates", len(candidates))
		}
		return Match{}, false
	}

	if r.logger != nil {
		r.logger.Debug("selected candidate", "track", best.Candidate.Name, "id", best.Candidate.ID, "score", best.Score)
	}
	return best, true
}

// Best returns the first match with the strictly highest score.
func Best(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	return best, true
}
