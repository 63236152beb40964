package search

import (
	"fmt"
	"strconv"
	"strings"
)

// NoResultsMessage is shown when a search returns nothing.
const NoResultsMessage = "No movies found matching your search criteria."

// FormatRating renders a rating, or "N/A" when absent.
func FormatRating(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

// FormatGenre renders a genre, or "Not specified" when empty.
func FormatGenre(g string) string {
	if g == "" {
		return "Not specified"
	}
	return g
}

// FormatResults renders search results as human-readable text.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d movies found!\n\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("--- %d. %s ---\n", i+1, r.Title))
		sb.WriteString(fmt.Sprintf("Genre: %s\n", FormatGenre(r.Genre)))
		sb.WriteString(fmt.Sprintf("Rating: %s   Similarity: %.1f%%\n", FormatRating(r.Rating), r.Similarity))
		sb.WriteString("\n")
		sb.WriteString(r.Description)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
