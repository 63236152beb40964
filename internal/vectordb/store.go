package vectordb

import (
	"context"
	"fmt"
)

// VectorStore is a persistent, embedding-indexed collection keyed by
// document id. Embeddings are computed by the store's embedder.
type VectorStore interface {
	// Add writes documents with their metadata. The three slices are
	// parallel and must have equal length.
	Add(ctx context.Context, ids []string, documents []string, metadatas []Metadata) error

	// Query returns up to n nearest neighbours for each text, restricted
	// to records admitted by filter.
	Query(ctx context.Context, texts []string, n int, filter Filter) (*QueryResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	Close() error
}

func checkAddArgs(ids, documents []string, metadatas []Metadata) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("add: mismatched lengths: %d ids, %d documents, %d metadatas",
			len(ids), len(documents), len(metadatas))
	}
	return nil
}

func checkQueryArgs(texts []string, n int) error {
	if len(texts) == 0 {
		return fmt.Errorf("query: no query texts")
	}
	if n < 1 {
		return fmt.Errorf("query: n must be positive, got %d", n)
	}
	return nil
}
