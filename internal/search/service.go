package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ziadkadry99/moviesearch/internal/history"
	"github.com/ziadkadry99/moviesearch/internal/vectordb"
)

// Recorder stores a log entry per search.
type Recorder interface {
	LogSearch(ctx context.Context, s history.Search) error
}

// Service runs validated queries against the shared store handle.
type Service struct {
	handle   *vectordb.Handle
	logger   *slog.Logger
	recorder Recorder
	source   string
}

// NewService creates a Service. A nil logger discards log output.
func NewService(handle *vectordb.Handle, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{handle: handle, logger: logger, source: "cli"}
}

// WithHistory records every search in rec, tagged with source
// (cli, web, mcp).
func (s *Service) WithHistory(rec Recorder, source string) *Service {
	s.recorder = rec
	s.source = source
	return s
}

// Search validates q and issues exactly one store query. Validation
// failures return ErrEmptyQuery or ErrResultCount without touching the
// store; store failures are wrapped in ErrStore.
func (s *Service) Search(ctx context.Context, q Query) ([]Result, error) {
	q, err := q.Validate()
	if err != nil {
		return nil, err
	}

	filter := q.Filter()
	results, err := s.query(ctx, q, filter)
	s.record(ctx, q, filter, len(results), err)
	if err != nil {
		s.logger.Error("search failed", "query", q.Text, "error", err)
		return nil, err
	}

	s.logger.Debug("search", "query", q.Text, "n_results", q.NResults,
		"min_rating", q.MinRating, "results", len(results))
	return results, nil
}

func (s *Service) query(ctx context.Context, q Query, filter vectordb.Filter) ([]Result, error) {
	store, err := s.handle.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: database connection failed: %w", ErrStore, err)
	}

	res, err := store.Query(ctx, []string{q.Text}, q.NResults, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return resultsFromMatches(res.Matches(0)), nil
}

// Count returns the number of indexed movies.
func (s *Service) Count(ctx context.Context) (int, error) {
	store, err := s.handle.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: database connection failed: %w", ErrStore, err)
	}
	return store.Count(ctx)
}

func (s *Service) record(ctx context.Context, q Query, filter vectordb.Filter, n int, searchErr error) {
	if s.recorder == nil {
		return
	}

	entry := history.Search{
		Query:       q.Text,
		NResults:    q.NResults,
		MinRating:   q.MinRating,
		Filter:      FilterString(filter),
		ResultCount: n,
		Source:      s.source,
	}
	if searchErr != nil {
		entry.Error = searchErr.Error()
	}
	if err := s.recorder.LogSearch(ctx, entry); err != nil {
		s.logger.Warn("recording search", "error", err)
	}
}

// FilterString renders the filter expression as JSON, or "" for no filter.
func FilterString(f vectordb.Filter) string {
	expr := f.Expression()
	if expr == nil {
		return ""
	}
	b, err := json.Marshal(expr)
	if err != nil {
		return ""
	}
	return string(b)
}
