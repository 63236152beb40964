package vectordb

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/moviesearch/internal/embeddings"
)

// ChromemStore implements VectorStore using chromem-go. With a directory
// it persists every document to disk as it is added; re-adding an id
// overwrites the previous entry.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embeddings.Embedder
}

// NewChromemStore opens (or creates) the named collection. An empty dir
// gives an in-memory store.
func NewChromemStore(dir string, compress bool, collection string, embedder embeddings.Embedder) (*ChromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dir, compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db %s: %w", dir, err)
		}
	}

	col, err := db.GetOrCreateCollection(collection, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedder:   embedder,
	}, nil
}

// Add embeds all documents in one embedder call and writes them.
func (s *ChromemStore) Add(ctx context.Context, ids []string, documents []string, metadatas []Metadata) error {
	if err := checkAddArgs(ids, documents, metadatas); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	vecs, err := s.embedder.Embed(ctx, documents)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(documents) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vecs), len(documents))
	}

	metas := make([]map[string]string, len(metadatas))
	for i, m := range metadatas {
		metas[i] = m.toMap()
	}

	if err := s.collection.Add(ctx, ids, vecs, metas, documents); err != nil {
		return fmt.Errorf("chromem add: %w", err)
	}
	return nil
}

// Query ranks the collection by cosine similarity. chromem's where clause
// only supports equality, so the rating filter is applied to the full
// ranking before truncating to n.
func (s *ChromemStore) Query(ctx context.Context, texts []string, n int, filter Filter) (*QueryResult, error) {
	if err := checkQueryArgs(texts, n); err != nil {
		return nil, err
	}

	result := &QueryResult{}
	count := s.collection.Count()
	if count == 0 {
		for range texts {
			result.appendRow(nil)
		}
		return result, nil
	}

	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limit := n
	if !filter.IsZero() {
		limit = count
	}
	// chromem-go requires nResults <= collection size.
	limit = min(limit, count)

	for _, vec := range vecs {
		res, err := s.collection.QueryEmbedding(ctx, vec, limit, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("chromem query: %w", err)
		}

		matches := make([]Match, 0, min(n, len(res)))
		for _, r := range res {
			md := metadataFromMap(r.Metadata)
			if !filter.Admits(md) {
				continue
			}
			matches = append(matches, Match{
				ID:       r.ID,
				Document: r.Content,
				Metadata: md,
				Distance: 1 - float64(r.Similarity),
			})
			if len(matches) == n {
				break
			}
		}
		result.appendRow(matches)
	}

	return result, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op: the persistent DB writes each document on Add.
func (s *ChromemStore) Close() error {
	return nil
}

// Export writes a gzip-compressed snapshot of the whole DB to path.
func (s *ChromemStore) Export(path string) error {
	return s.db.ExportToFile(path, true, "")
}
