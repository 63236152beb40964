// Package history records ingestion runs and searches in SQLite.
package history

import "time"

// RunStatus is the outcome of an ingestion run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusPartial   RunStatus = "partial"
	StatusFailed    RunStatus = "failed"
)

// Run is one ingestion of a dataset into the vector store.
type Run struct {
	ID                string     `json:"id"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	Dataset           string     `json:"dataset"`
	Backend           string     `json:"backend"`
	Collection        string     `json:"collection"`
	Status            RunStatus  `json:"status"`
	RowsRead          int        `json:"rows_read"`
	RowsRejected      int        `json:"rows_rejected"`
	DuplicatesDropped int        `json:"duplicates_dropped"`
	Records           int        `json:"records"`
	Batches           int        `json:"batches"`
	Written           int        `json:"written"`
	Error             string     `json:"error,omitempty"`
	Failures          []Failure  `json:"failures,omitempty"`
}

// Failure is a batch that could not be written, covering record
// positions [Start, End).
type Failure struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Error string `json:"error"`
}

// Search is one query issued against the store.
type Search struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Query       string    `json:"query"`
	NResults    int       `json:"n_results"`
	MinRating   float64   `json:"min_rating"`
	Filter      string    `json:"filter"`
	ResultCount int       `json:"result_count"`
	Source      string    `json:"source"`
	Error       string    `json:"error,omitempty"`
}
