package config

const (
	// DefaultCollection is the fixed name of the movie collection.
	DefaultCollection = "movie_embeddings"

	// DefaultBatchSize is the number of records written per store call.
	DefaultBatchSize = 100

	DefaultEmbeddingModel = "text-embedding-3-small"
)

// ollamaEmbeddingModel is used when the provider is switched to ollama
// without an explicit model.
const ollamaEmbeddingModel = "nomic-embed-text"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend:           BackendChromem,
		StoreDir:          "./embeddingsDB",
		QdrantAddr:        "localhost:6334",
		Collection:        DefaultCollection,
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    DefaultEmbeddingModel,
		BatchSize:         DefaultBatchSize,
		QueryCacheSize:    256,
		HistoryDB:         "./embeddingsDB/history.db",
		Server: ServerConfig{
			Port: 8501,
		},
	}
}

// ResolvedEmbeddingModel returns the embedding model for the configured provider.
func (c *Config) ResolvedEmbeddingModel() string {
	switch {
	case c.EmbeddingProvider == ProviderOllama && (c.EmbeddingModel == "" || c.EmbeddingModel == DefaultEmbeddingModel):
		return ollamaEmbeddingModel
	case c.EmbeddingModel == "":
		return DefaultEmbeddingModel
	default:
		return c.EmbeddingModel
	}
}
