package movies

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrMissingColumn is returned when a dataset lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrNoDataset is returned when the dataset path is empty or matches no file.
	ErrNoDataset = errors.New("no dataset file")
)

// Stats summarises what Load did with the raw rows.
type Stats struct {
	Files      []string
	Rows       int
	Rejected   int
	Duplicates int
}

// Dataset is the cleaned, deduplicated output of Load.
type Dataset struct {
	Records []Record
	Stats   Stats
}

// ResolvePaths expands pattern into the files it names. A pattern without
// glob metacharacters is returned as-is if it exists. Matches are sorted.
func ResolvePaths(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: dataset path is empty (set DATASET_PATH or dataset_path)", ErrNoDataset)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q matched nothing", ErrNoDataset, pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// Load reads every CSV matched by pattern, projects the required columns,
// drops titles that appear more than once across all files and normalises
// genres. Rows with an empty title, missing fields or an unparseable rating
// are rejected and logged. A rejected row still counts towards its title's
// occurrences.
func Load(pattern string, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths, err := ResolvePaths(pattern)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Stats: Stats{Files: paths}}
	var raw []Record
	counts := make(map[string]int)
	for _, p := range paths {
		res, err := readFile(p, logger)
		if err != nil {
			return nil, err
		}
		raw = append(raw, res.Records...)
		for _, title := range res.Titles {
			counts[title]++
		}
		ds.Stats.Rows += res.Rows
		ds.Stats.Rejected += res.Rejected
	}

	unique := keepSingletons(raw, counts)
	ds.Stats.Duplicates = len(raw) - len(unique)

	for i := range unique {
		unique[i].Genre = CleanGenres(unique[i].Genre)
	}
	ds.Records = unique
	return ds, nil
}

func readFile(path string, logger *slog.Logger) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	res, err := Read(f, path, logger)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return res, nil
}

// ReadResult is the outcome of parsing one CSV.
type ReadResult struct {
	Records []Record
	// Titles holds the title of every data row that had one, accepted or
	// rejected, in file order.
	Titles   []string
	Rows     int
	Rejected int
}

// Read parses CSV from r. name is only used in log messages. Records are
// not deduplicated; titles are kept verbatim.
func Read(r io.Reader, name string, logger *slog.Logger) (*ReadResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file has no header", ErrMissingColumn)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	width := 0
	for _, i := range idx {
		width = max(width, i+1)
	}

	res := &ReadResult{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", res.Rows+2, err)
		}
		res.Rows++
		line := res.Rows + 1

		var title string
		if idx[ColumnMovie] < len(row) {
			title = row[idx[ColumnMovie]]
		}
		if strings.TrimSpace(title) == "" {
			res.Rejected++
			logger.Warn("rejecting row without title", "file", name, "line", line)
			continue
		}
		res.Titles = append(res.Titles, title)

		if len(row) < width {
			res.Rejected++
			logger.Warn("rejecting row with missing fields", "file", name, "line", line, "movie", title, "fields", len(row))
			continue
		}
		rating, err := parseRating(row[idx[ColumnRating]])
		if err != nil {
			res.Rejected++
			logger.Warn("rejecting row with invalid rating", "file", name, "line", line, "movie", title, "error", err)
			continue
		}

		res.Records = append(res.Records, Record{
			ID:          title,
			Description: row[idx[ColumnDescription]],
			Genre:       row[idx[ColumnGenre]],
			Rating:      rating,
		})
	}
	return res, nil
}

// columnIndex maps each required column to its position in header.
func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		pos[strings.TrimSpace(h)] = i
	}
	idx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		i, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
		idx[col] = i
	}
	return idx, nil
}

// parseRating returns nil for blank or NaN-like values.
func parseRating(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "n/a", "na", "null":
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}
