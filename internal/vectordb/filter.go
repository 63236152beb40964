package vectordb

// Filter restricts a query to records satisfying a metadata condition.
// The zero value applies no filter.
type Filter struct {
	minRating *float64
}

// NoFilter returns a filter that admits every record.
func NoFilter() Filter { return Filter{} }

// MinRating returns a filter admitting records with rating >= threshold.
// Records without a rating never match.
func MinRating(threshold float64) Filter {
	return Filter{minRating: &threshold}
}

// MinRatingThreshold returns the threshold and whether one is set.
func (f Filter) MinRatingThreshold() (float64, bool) {
	if f.minRating == nil {
		return 0, false
	}
	return *f.minRating, true
}

// IsZero reports whether the filter admits everything.
func (f Filter) IsZero() bool { return f.minRating == nil }

// Admits reports whether m satisfies the filter.
func (f Filter) Admits(m Metadata) bool {
	if f.minRating == nil {
		return true
	}
	return m.Rating != nil && *m.Rating >= *f.minRating
}

// Expression renders the filter in the Chroma-style where syntax,
// e.g. {"rating": {"$gte": 7.5}}. NoFilter renders as nil.
func (f Filter) Expression() map[string]any {
	if f.minRating == nil {
		return nil
	}
	return map[string]any{
		metaRating: map[string]any{"$gte": *f.minRating},
	}
}
