package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/moviesearch/internal/db"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// Store reads and writes history rows.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// StartRun inserts a running ingestion run and returns its id. If run.ID
// is empty a UUID is generated.
func (s *Store) StartRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, started_at, dataset, backend, collection, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.DateTime),
		run.Dataset,
		run.Backend,
		run.Collection,
		string(StatusRunning),
	)
	if err != nil {
		return "", fmt.Errorf("inserting ingest run: %w", err)
	}
	return run.ID, nil
}

// FinishRun stores the final counters, status, and failed batches of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	finished := time.Now()
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE ingest_runs SET
			finished_at = ?, status = ?, rows_read = ?, rows_rejected = ?,
			duplicates_dropped = ?, records = ?, batches = ?, written = ?, error = ?
		WHERE id = ?`,
		finished.UTC().Format(time.DateTime),
		string(run.Status),
		run.RowsRead,
		run.RowsRejected,
		run.DuplicatesDropped,
		run.Records,
		run.Batches,
		run.Written,
		nullString(run.Error),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("updating ingest run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ingest run %s: %w", run.ID, ErrNotFound)
	}

	for _, f := range run.Failures {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO ingest_failures (run_id, range_start, range_end, error)
			VALUES (?, ?, ?, ?)`,
			run.ID, f.Start, f.End, f.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting ingest failure: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run with its failed batches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM ingest_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ingest run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	run.Failures, err = s.failures(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first. Failures are not loaded.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM ingest_runs ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func (s *Store) failures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT range_start, range_end, error FROM ingest_failures
		WHERE run_id = ? ORDER BY range_start`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying ingest failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Start, &f.End, &f.Error); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// LogSearch appends a search to the log. If search.ID is empty a UUID is
// generated.
func (s *Store) LogSearch(ctx context.Context, search Search) error {
	if search.ID == "" {
		search.ID = uuid.New().String()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO searches (id, created_at, query, n_results, min_rating, filter, result_count, source, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		search.ID,
		search.CreatedAt.UTC().Format(time.DateTime),
		search.Query,
		search.NResults,
		search.MinRating,
		search.Filter,
		search.ResultCount,
		search.Source,
		nullString(search.Error),
	)
	if err != nil {
		return fmt.Errorf("inserting search: %w", err)
	}
	return nil
}

// RecentSearches returns the most recent searches first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]Search, error) {
	query := `SELECT id, created_at, query, n_results, min_rating, filter, result_count, source, error
		FROM searches ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var out []Search
	for rows.Next() {
		var (
			sr      Search
			ts      string
			errText sql.NullString
		)
		if err := rows.Scan(&sr.ID, &ts, &sr.Query, &sr.NResults, &sr.MinRating,
			&sr.Filter, &sr.ResultCount, &sr.Source, &errText); err != nil {
			return nil, err
		}
		sr.CreatedAt = parseTime(ts)
		sr.Error = errText.String
		out = append(out, sr)
	}
	return out, rows.Err()
}

const runColumns = `id, started_at, finished_at, dataset, backend, collection, status,
	rows_read, rows_rejected, duplicates_dropped, records, batches, written, error`

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r        Run
		status   string
		started  string
		finished sql.NullString
		errText  sql.NullString
	)

	err := sc.Scan(
		&r.ID, &started, &finished, &r.Dataset, &r.Backend, &r.Collection, &status,
		&r.RowsRead, &r.RowsRejected, &r.DuplicatesDropped, &r.Records, &r.Batches,
		&r.Written, &errText,
	)
	if err != nil {
		return nil, err
	}

	r.Status = RunStatus(status)
	r.StartedAt = parseTime(started)
	if finished.Valid {
		t := parseTime(finished.String)
		r.FinishedAt = &t
	}
	r.Error = errText.String
	return &r, nil
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
