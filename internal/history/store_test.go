package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/moviesearch/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestStartAndFinishRun(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, Run{Dataset: "movies.csv", Backend: "chromem", Collection: "movie_embeddings"})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated ID")
	}

	got, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusRunning {
		t.Errorf("Status = %q, want %q", got.Status, StatusRunning)
	}
	if got.FinishedAt != nil {
		t.Errorf("FinishedAt = %v, want nil", got.FinishedAt)
	}

	err = store.FinishRun(ctx, Run{
		ID:                id,
		Status:            StatusPartial,
		RowsRead:          250,
		RowsRejected:      2,
		DuplicatesDropped: 4,
		Records:           244,
		Batches:           3,
		Written:           144,
		Failures:          []Failure{{Start: 100, End: 200, Error: "rate limited"}},
	})
	if err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err = store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusPartial {
		t.Errorf("Status = %q, want %q", got.Status, StatusPartial)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}
	if got.Dataset != "movies.csv" || got.Backend != "chromem" {
		t.Errorf("Dataset/Backend = %q/%q", got.Dataset, got.Backend)
	}
	if got.Records != 244 || got.Written != 144 || got.Batches != 3 || got.DuplicatesDropped != 4 {
		t.Errorf("counters = %+v", got)
	}
	if len(got.Failures) != 1 || got.Failures[0].Start != 100 || got.Failures[0].End != 200 {
		t.Errorf("Failures = %+v", got.Failures)
	}
}

func TestFinishRunUnknown(t *testing.T) {
	store := setupStore(t)
	err := store.FinishRun(context.Background(), Run{ID: "missing", Status: StatusCompleted})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := setupStore(t)
	_, err := store.GetRun(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, name := range []string{"first.csv", "second.csv", "third.csv"} {
		if _, err := store.StartRun(ctx, Run{Dataset: name, StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("StartRun: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Dataset != "third.csv" || runs[1].Dataset != "second.csv" {
		t.Errorf("order = %s, %s", runs[0].Dataset, runs[1].Dataset)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("StartedAt = %v", runs[0].StartedAt)
	}
}

func TestLogSearch(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	searches := []Search{
		{Query: "dreams", NResults: 3, Source: "cli"},
		{Query: "heist", NResults: 5, MinRating: 8, Filter: `{"rating":{"$gte":8}}`, ResultCount: 2, Source: "web"},
		{Query: "space", NResults: 3, Source: "mcp", Error: "store unavailable"},
	}
	for _, s := range searches {
		if err := store.LogSearch(ctx, s); err != nil {
			t.Fatalf("LogSearch: %v", err)
		}
	}

	got, err := store.RecentSearches(ctx, 0)
	if err != nil {
		t.Fatalf("RecentSearches: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d searches, want 3", len(got))
	}
	if got[0].Query != "space" || got[0].Error != "store unavailable" {
		t.Errorf("newest = %+v", got[0])
	}
	if got[1].MinRating != 8 || got[1].ResultCount != 2 || got[1].Source != "web" {
		t.Errorf("second = %+v", got[1])
	}
	if got[2].ID == "" {
		t.Error("expected generated ID")
	}
}

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPRuns(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, Run{Dataset: "movies.csv"})
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history/runs", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var runs []Run
	if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("runs = %+v", runs)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/history/runs/"+id, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHTTPRunNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history/runs/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHTTPSearches(t *testing.T) {
	r, store := setupRouter(t)
	if err := store.LogSearch(context.Background(), Search{Query: "dreams", NResults: 3}); err != nil {
		t.Fatalf("LogSearch: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history/searches?limit=5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var got []Search
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Query != "dreams" {
		t.Errorf("searches = %+v", got)
	}
}
