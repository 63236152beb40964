package cmd

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/moviesearch/internal/config"
	"github.com/ziadkadry99/moviesearch/internal/db"
	"github.com/ziadkadry99/moviesearch/internal/embeddings"
	"github.com/ziadkadry99/moviesearch/internal/history"
	"github.com/ziadkadry99/moviesearch/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `moviesearch init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates the embedder named by the config,
// rate limited when embedding_rpm is set.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	model := cfg.ResolvedEmbeddingModel()

	var embedder embeddings.Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		apiKey, err := cfg.APIKey()
		if err != nil {
			return nil, err
		}
		embedder = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model))
	case config.ProviderOllama:
		embedder = embeddings.NewOllamaEmbedder(model, cfg.OllamaURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}

	return embeddings.NewRateLimitedEmbedder(embedder, cfg.EmbeddingRPM), nil
}

// openStore opens the configured vector store backend.
func openStore(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (vectordb.VectorStore, error) {
	switch cfg.Backend {
	case config.BackendQdrant:
		store, err := vectordb.NewQdrantStore(cfg.QdrantAddr, cfg.Collection, embedder)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureCollection(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return vectordb.NewChromemStore(cfg.StoreDir, cfg.Compress, cfg.Collection, embedder)
	}
}

// newStoreHandle returns the lazily opened store used by the query
// surfaces. Query embeddings are cached.
func newStoreHandle(cfg *config.Config) *vectordb.Handle {
	return vectordb.NewHandle(func(ctx context.Context) (vectordb.VectorStore, error) {
		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			return nil, err
		}
		if cfg.QueryCacheSize > 0 {
			cached, err := embeddings.NewCachedEmbedder(embedder, cfg.QueryCacheSize)
			if err != nil {
				return nil, err
			}
			embedder = cached
		}

		store, err := openStore(ctx, cfg, embedder)
		if err != nil {
			logger.Error("database connection failed", "backend", cfg.Backend, "error", err)
			return nil, err
		}
		logger.Debug("vector store opened", "backend", cfg.Backend, "collection", cfg.Collection)
		return store, nil
	})
}

// openHistory opens the history database. It returns nil, nil when
// history_db is empty.
func openHistory(cfg *config.Config) (*db.DB, *history.Store, error) {
	if cfg.HistoryDB == "" {
		return nil, nil, nil
	}
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	return database, history.NewStore(database), nil
}
