package config

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// StoreBackend identifies the vector store implementation.
type StoreBackend string

const (
	BackendChromem StoreBackend = "chromem"
	BackendQdrant  StoreBackend = "qdrant"
)

// Config is the top-level moviesearch configuration, corresponding to .moviesearch.yml.
type Config struct {
	DatasetPath       string       `yaml:"dataset_path" koanf:"dataset_path"`
	Backend           StoreBackend `yaml:"backend" koanf:"backend"`
	StoreDir          string       `yaml:"store_dir" koanf:"store_dir"`
	Compress          bool         `yaml:"compress" koanf:"compress"`
	QdrantAddr        string       `yaml:"qdrant_addr" koanf:"qdrant_addr"`
	Collection        string       `yaml:"collection" koanf:"collection"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	OllamaURL         string       `yaml:"ollama_url" koanf:"ollama_url"`
	EmbeddingRPM      int          `yaml:"embedding_rpm" koanf:"embedding_rpm"`
	BatchSize         int          `yaml:"batch_size" koanf:"batch_size"`
	QueryCacheSize    int          `yaml:"query_cache_size" koanf:"query_cache_size"`
	HistoryDB         string       `yaml:"history_db" koanf:"history_db"`
	Server            ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds settings for the web search UI.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
