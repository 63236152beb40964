package vectordb

import (
	"strconv"
)

// Metadata is the filterable payload stored next to each movie embedding.
type Metadata struct {
	Genre  string
	Rating *float64
}

const (
	metaGenre  = "genre"
	metaRating = "rating"
)

// toMap flattens metadata for stores that keep string maps.
// An absent rating is omitted rather than stored as an empty value.
func (m Metadata) toMap() map[string]string {
	out := map[string]string{metaGenre: m.Genre}
	if m.Rating != nil {
		out[metaRating] = strconv.FormatFloat(*m.Rating, 'f', -1, 64)
	}
	return out
}

func metadataFromMap(m map[string]string) Metadata {
	md := Metadata{Genre: m[metaGenre]}
	if s, ok := m[metaRating]; ok {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			md.Rating = &v
		}
	}
	return md
}

// Match is one neighbour returned for a query text.
type Match struct {
	ID       string
	Document string
	Metadata Metadata
	// Distance is the store's dissimilarity score; lower is closer.
	Distance float64
}

// QueryResult holds one row per query text, each ordered by increasing
// distance. The nesting mirrors the store read API.
type QueryResult struct {
	IDs       [][]string
	Documents [][]string
	Metadatas [][]Metadata
	Distances [][]float64
}

// appendRow adds the matches for one query text.
func (r *QueryResult) appendRow(matches []Match) {
	ids := make([]string, len(matches))
	docs := make([]string, len(matches))
	metas := make([]Metadata, len(matches))
	dists := make([]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		docs[i] = m.Document
		metas[i] = m.Metadata
		dists[i] = m.Distance
	}
	r.IDs = append(r.IDs, ids)
	r.Documents = append(r.Documents, docs)
	r.Metadatas = append(r.Metadatas, metas)
	r.Distances = append(r.Distances, dists)
}

// Matches zips the row for query i. It returns nil if i is out of range.
func (r *QueryResult) Matches(i int) []Match {
	if r == nil || i < 0 || i >= len(r.IDs) {
		return nil
	}
	out := make([]Match, len(r.IDs[i]))
	for j := range r.IDs[i] {
		out[j] = Match{
			ID:       r.IDs[i][j],
			Document: r.Documents[i][j],
			Metadata: r.Metadatas[i][j],
			Distance: r.Distances[i][j],
		}
	}
	return out
}

// Empty reports whether the first query produced no matches.
func (r *QueryResult) Empty() bool {
	return r == nil || len(r.IDs) == 0 || len(r.IDs[0]) == 0
}
