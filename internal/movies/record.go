// Package movies loads and prepares movie records for embedding.
package movies

import "strings"

// Required dataset columns, in projection order.
const (
	ColumnMovie       = "movie"
	ColumnGenre       = "genre"
	ColumnRating      = "rating"
	ColumnDescription = "description"
)

// RequiredColumns lists the columns every dataset must provide.
var RequiredColumns = []string{ColumnMovie, ColumnGenre, ColumnRating, ColumnDescription}

// Record is one movie row after projection.
type Record struct {
	// ID is the movie title; it keys the record in the vector store.
	ID          string
	Description string
	Genre       string
	Rating      *float64
}

// CleanGenres normalises a comma-separated genre list: each token is
// trimmed and tokens are re-joined with ", ". Empty input stays empty.
func CleanGenres(genres string) string {
	if genres == "" {
		return ""
	}
	parts := strings.Split(genres, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// DropDuplicateIDs removes every record whose ID occurs more than once.
// No occurrence is kept; the remaining records keep their order.
func DropDuplicateIDs(records []Record) []Record {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.ID]++
	}
	return keepSingletons(records, counts)
}

// keepSingletons keeps the records whose ID was counted exactly once.
func keepSingletons(records []Record, counts map[string]int) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if counts[r.ID] == 1 {
			out = append(out, r)
		}
	}
	return out
}

// Batch is a contiguous slice of records and its position in the input.
type Batch struct {
	Start   int
	End     int // exclusive
	Records []Record
}

// Batches partitions records into consecutive groups of at most size,
// preserving order. size < 1 is treated as 1.
func Batches(records []Record, size int) []Batch {
	if size < 1 {
		size = 1
	}
	var out []Batch
	for i := 0; i < len(records); i += size {
		end := min(i+size, len(records))
		out = append(out, Batch{Start: i, End: end, Records: records[i:end]})
	}
	return out
}
