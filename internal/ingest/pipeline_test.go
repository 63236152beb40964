package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/moviesearch/internal/db"
	"github.com/ziadkadry99/moviesearch/internal/embeddings/mock"
	"github.com/ziadkadry99/moviesearch/internal/history"
	"github.com/ziadkadry99/moviesearch/internal/movies"
	"github.com/ziadkadry99/moviesearch/internal/vectordb"
)

// flakyStore fails the Add calls whose 1-based index is in failOn.
type flakyStore struct {
	failOn map[int]bool
	calls  [][]string
	metas  [][]vectordb.Metadata
}

func (f *flakyStore) Add(_ context.Context, ids []string, docs []string, metas []vectordb.Metadata) error {
	f.calls = append(f.calls, ids)
	f.metas = append(f.metas, metas)
	if f.failOn[len(f.calls)] {
		return errors.New("rate limit exceeded")
	}
	return nil
}

func (f *flakyStore) Query(context.Context, []string, int, vectordb.Filter) (*vectordb.QueryResult, error) {
	return &vectordb.QueryResult{}, nil
}
func (f *flakyStore) Count(context.Context) (int, error) { return 0, nil }
func (f *flakyStore) Close() error                       { return nil }

func dataset(n int) *movies.Dataset {
	ds := &movies.Dataset{Stats: movies.Stats{Files: []string{"movies.csv"}, Rows: n}}
	for i := 0; i < n; i++ {
		r := float64(i%10) + 0.5
		ds.Records = append(ds.Records, movies.Record{
			ID:          "movie-" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Description: "description",
			Genre:       "Drama",
			Rating:      &r,
		})
	}
	return ds
}

func TestRun_FailingBatchIsSkipped(t *testing.T) {
	store := &flakyStore{failOn: map[int]bool{2: true}}
	p := NewPipeline(store, 2, nil)

	res, err := p.Run(context.Background(), dataset(6))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.calls) != 3 {
		t.Fatalf("Add called %d times, want 3", len(store.calls))
	}
	if res.Written != 4 {
		t.Errorf("Written = %d, want 4", res.Written)
	}
	if len(res.Failures) != 1 || res.Failures[0].Start != 2 || res.Failures[0].End != 4 {
		t.Errorf("Failures = %+v, want one failure [2,4)", res.Failures)
	}
	if res.Status() != history.StatusPartial {
		t.Errorf("Status = %q, want partial", res.Status())
	}
}

func TestRun_BatchesPreserveOrder(t *testing.T) {
	store := &flakyStore{}
	ds := dataset(250)
	p := NewPipeline(store, 100, nil)

	res, err := p.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Batches != 3 || res.Written != 250 {
		t.Errorf("Batches = %d, Written = %d", res.Batches, res.Written)
	}
	wantSizes := []int{100, 100, 50}
	pos := 0
	for i, ids := range store.calls {
		if len(ids) != wantSizes[i] {
			t.Errorf("batch %d size = %d, want %d", i, len(ids), wantSizes[i])
		}
		for j, id := range ids {
			if id != ds.Records[pos].ID {
				t.Fatalf("batch %d item %d = %s, want %s", i, j, id, ds.Records[pos].ID)
			}
			if *store.metas[i][j].Rating != *ds.Records[pos].Rating {
				t.Fatalf("metadata out of step at position %d", pos)
			}
			pos++
		}
	}
	if res.Status() != history.StatusCompleted {
		t.Errorf("Status = %q, want completed", res.Status())
	}
}

func TestRun_AllBatchesFail(t *testing.T) {
	store := &flakyStore{failOn: map[int]bool{1: true, 2: true}}
	res, err := NewPipeline(store, 5, nil).Run(context.Background(), dataset(10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status() != history.StatusFailed {
		t.Errorf("Status = %q, want failed", res.Status())
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &flakyStore{}
	_, err := NewPipeline(store, 5, nil).Run(ctx, dataset(10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("Add called %d times, want 0", len(store.calls))
	}
}

func TestPlan(t *testing.T) {
	p := NewPipeline(&flakyStore{}, 100, nil)
	batches := p.Plan(dataset(201))
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if last := batches[2]; last.Start != 200 || last.End != 201 {
		t.Errorf("last batch = [%d,%d), want [200,201)", last.Start, last.End)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()
	hist := history.NewStore(database)

	p := NewPipeline(&flakyStore{failOn: map[int]bool{2: true}}, 2, nil)
	p.SetRecorder(hist)
	p.Backend = "chromem"
	p.Collection = "movie_embeddings"

	res, err := p.Run(context.Background(), dataset(6))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := hist.GetRun(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != history.StatusPartial || run.Written != 4 || run.Batches != 3 || run.Records != 6 {
		t.Errorf("run = %+v", run)
	}
	if len(run.Failures) != 1 || run.Failures[0].Start != 2 || run.Failures[0].End != 4 {
		t.Errorf("Failures = %+v", run.Failures)
	}
	if run.Dataset != "movies.csv" || run.Backend != "chromem" {
		t.Errorf("Dataset/Backend = %q/%q", run.Dataset, run.Backend)
	}
}

func TestEndToEndIngestion(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "movies.csv")
	content := "movie,genre,rating,description,year\n" +
		"Inception,\"Action,Sci-Fi\",8.8,A thief steals secrets,2010\n" +
		"Up,\"Animation, Adventure\",8.3,An old man flies his house,2009\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := movies.Load(csvPath, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	store, err := vectordb.NewChromemStore(filepath.Join(dir, "embeddingsDB"), false, "movie_embeddings", mock.NewEmbedder(32))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	res, err := NewPipeline(store, 100, nil).Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Written != 2 || len(res.Failures) != 0 {
		t.Fatalf("result = %+v", res)
	}

	qr, err := store.Query(context.Background(), []string{"An old man flies his house"}, 2, vectordb.NoFilter())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	got := map[string]string{}
	for _, m := range qr.Matches(0) {
		got[m.ID] = m.Metadata.Genre
	}
	if got["Inception"] != "Action, Sci-Fi" {
		t.Errorf("Inception genre = %q, want %q", got["Inception"], "Action, Sci-Fi")
	}
	if got["Up"] != "Animation, Adventure" {
		t.Errorf("Up genre = %q, want %q", got["Up"], "Animation, Adventure")
	}
}
