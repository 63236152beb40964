// Package search answers free-text movie queries against the vector store.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/moviesearch/internal/vectordb"
)

// Result count bounds accepted by Search.
const (
	MinResults     = 1
	MaxResults     = 8
	DefaultResults = 3
)

var (
	// ErrEmptyQuery is returned for a blank query; no search is performed.
	ErrEmptyQuery = errors.New("please enter a movie genre or feature to search")

	// ErrResultCount is returned when NResults is outside [MinResults, MaxResults].
	ErrResultCount = fmt.Errorf("number of results must be between %d and %d", MinResults, MaxResults)

	// ErrStore wraps failures of the vector store or its embedder.
	ErrStore = errors.New("search failed")
)

// Query is one user request.
type Query struct {
	Text     string `json:"query"`
	NResults int    `json:"n_results"`
	// MinRating > 0 restricts results to rating >= MinRating.
	MinRating float64 `json:"min_rating"`
}

// Validate trims the query text and checks its bounds.
func (q Query) Validate() (Query, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, ErrEmptyQuery
	}
	if q.NResults < MinResults || q.NResults > MaxResults {
		return q, fmt.Errorf("%w: got %d", ErrResultCount, q.NResults)
	}
	return q, nil
}

// Filter returns the rating filter for the query.
func (q Query) Filter() vectordb.Filter {
	if q.MinRating > 0 {
		return vectordb.MinRating(q.MinRating)
	}
	return vectordb.NoFilter()
}

// Result is one movie returned for a query.
type Result struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Rating      *float64 `json:"rating"`
	Distance    float64  `json:"distance"`
	// Similarity is a display percentage derived from Distance.
	Similarity float64 `json:"similarity"`
}

// Similarity converts a distance into a percentage for display. It is a
// linear heuristic, not a calibrated probability, and is clamped at 0.
func Similarity(distance float64) float64 {
	return max(0, (1-distance)*100)
}

func resultsFromMatches(matches []vectordb.Match) []Result {
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{
			Title:       m.ID,
			Description: m.Document,
			Genre:       m.Metadata.Genre,
			Rating:      m.Metadata.Rating,
			Distance:    m.Distance,
			Similarity:  Similarity(m.Distance),
		}
	}
	return out
}
