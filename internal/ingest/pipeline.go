// Package ingest writes a prepared movie dataset into the vector store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ziadkadry99/moviesearch/internal/history"
	"github.com/ziadkadry99/moviesearch/internal/movies"
	"github.com/ziadkadry99/moviesearch/internal/progress"
	"github.com/ziadkadry99/moviesearch/internal/vectordb"
)

// RunRecorder persists the outcome of an ingestion run.
type RunRecorder interface {
	StartRun(ctx context.Context, run history.Run) (string, error)
	FinishRun(ctx context.Context, run history.Run) error
}

// Pipeline orchestrates the write phase: batch -> add -> record.
type Pipeline struct {
	store     vectordb.VectorStore
	batchSize int
	reporter  progress.Reporter
	logger    *slog.Logger
	recorder  RunRecorder

	// Descriptive fields copied into the history record.
	Backend    string
	Collection string
}

// NewPipeline creates a Pipeline writing to store in batches of batchSize.
func NewPipeline(store vectordb.VectorStore, batchSize int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		store:     store,
		batchSize: batchSize,
		reporter:  progress.Nop{},
		logger:    logger,
	}
}

// SetReporter sets the progress reporter.
func (p *Pipeline) SetReporter(r progress.Reporter) {
	p.reporter = r
}

// SetRecorder enables run history.
func (p *Pipeline) SetRecorder(r RunRecorder) {
	p.recorder = r
}

// Result summarises a pipeline run.
type Result struct {
	RunID    string
	Batches  int
	Written  int
	Failures []history.Failure
	Duration time.Duration
}

// Status classifies the run from its failures.
func (r *Result) Status() history.RunStatus {
	switch {
	case len(r.Failures) == 0:
		return history.StatusCompleted
	case r.Written > 0:
		return history.StatusPartial
	default:
		return history.StatusFailed
	}
}

// Plan returns the batches Run would submit, without touching the store.
func (p *Pipeline) Plan(ds *movies.Dataset) []movies.Batch {
	return movies.Batches(ds.Records, p.batchSize)
}

// Run submits every batch of ds in order. A failing batch is logged with
// its record range and skipped; later batches are still attempted. Run
// only returns an error if ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, ds *movies.Dataset) (*Result, error) {
	start := time.Now()
	batches := p.Plan(ds)
	result := &Result{Batches: len(batches)}

	result.RunID = p.startRun(ctx, ds)

	p.reporter.Start(len(batches))
	var runErr error
	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("ingestion interrupted before batch %d-%d: %w", b.Start, b.End, err)
			break
		}

		ids, docs, metas := columns(b.Records)
		if err := p.store.Add(ctx, ids, docs, metas); err != nil {
			p.logger.Error("batch failed", "start", b.Start, "end", b.End, "error", err)
			result.Failures = append(result.Failures, history.Failure{Start: b.Start, End: b.End, Error: err.Error()})
		} else {
			result.Written += len(b.Records)
			p.logger.Debug("batch written", "start", b.Start, "end", b.End)
		}
		p.reporter.Update(i+1, fmt.Sprintf("records %d-%d", b.Start, b.End))
	}
	p.reporter.Finish()

	result.Duration = time.Since(start)
	p.finishRun(ctx, ds, result, runErr)

	p.logger.Info("ingestion finished",
		"records", len(ds.Records),
		"written", result.Written,
		"failed_batches", len(result.Failures),
		"duration", result.Duration.Round(time.Millisecond),
	)
	return result, runErr
}

// columns splits records into the parallel slices the store expects.
func columns(records []movies.Record) (ids, docs []string, metas []vectordb.Metadata) {
	ids = make([]string, len(records))
	docs = make([]string, len(records))
	metas = make([]vectordb.Metadata, len(records))
	for i, r := range records {
		ids[i] = r.ID
		docs[i] = r.Description
		metas[i] = vectordb.Metadata{Genre: r.Genre, Rating: r.Rating}
	}
	return ids, docs, metas
}

func (p *Pipeline) startRun(ctx context.Context, ds *movies.Dataset) string {
	if p.recorder == nil {
		return ""
	}
	id, err := p.recorder.StartRun(ctx, history.Run{
		Dataset:    datasetName(ds),
		Backend:    p.Backend,
		Collection: p.Collection,
	})
	if err != nil {
		p.logger.Warn("recording ingest run", "error", err)
		return ""
	}
	return id
}

func (p *Pipeline) finishRun(ctx context.Context, ds *movies.Dataset, result *Result, runErr error) {
	if p.recorder == nil || result.RunID == "" {
		return
	}
	run := history.Run{
		ID:                result.RunID,
		Status:            result.Status(),
		RowsRead:          ds.Stats.Rows,
		RowsRejected:      ds.Stats.Rejected,
		DuplicatesDropped: ds.Stats.Duplicates,
		Records:           len(ds.Records),
		Batches:           result.Batches,
		Written:           result.Written,
		Failures:          result.Failures,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}
	// The run context may already be cancelled.
	if err := p.recorder.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		p.logger.Warn("recording ingest run", "run", result.RunID, "error", err)
	}
}

func datasetName(ds *movies.Dataset) string {
	switch len(ds.Stats.Files) {
	case 0:
		return ""
	case 1:
		return ds.Stats.Files[0]
	default:
		return fmt.Sprintf("%s (+%d files)", ds.Stats.Files[0], len(ds.Stats.Files)-1)
	}
}
