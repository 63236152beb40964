package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	// DatasetPathEnvVar names the dataset file when no config value is set.
	DatasetPathEnvVar = "DATASET_PATH"

	envPrefix = "MOVIESEARCH_"
)

// ErrMissingAPIKey is returned when the embedding provider needs a key that is not set.
var ErrMissingAPIKey = errors.New("embedding provider API key is not set")

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already present in the environment.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MOVIESEARCH_*). DATASET_PATH fills
// dataset_path when neither the file nor MOVIESEARCH_DATASET_PATH set it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// MOVIESEARCH_BATCH_SIZE -> batch_size, MOVIESEARCH_SERVER__PORT -> server.port.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.DatasetPath == "" {
		cfg.DatasetPath = os.Getenv(DatasetPathEnvVar)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

var validBackends = map[StoreBackend]bool{
	BackendChromem: true,
	BackendQdrant:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validBackends[c.Backend] {
		return fmt.Errorf("invalid backend %q: must be one of chromem, qdrant", c.Backend)
	}
	if c.Backend == BackendChromem && c.StoreDir == "" {
		return fmt.Errorf("store_dir is required for the chromem backend")
	}
	if c.Backend == BackendQdrant && c.QdrantAddr == "" {
		return fmt.Errorf("qdrant_addr is required for the qdrant backend")
	}
	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of openai, ollama", c.EmbeddingProvider)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.EmbeddingRPM < 0 {
		return fmt.Errorf("embedding_rpm must be non-negative")
	}
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("query_cache_size must be non-negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// APIKey returns the API key for the configured embedding provider.
// Providers that need no key return an empty string and no error.
func (c *Config) APIKey() (string, error) {
	envVar := APIKeyEnvVar(c.EmbeddingProvider)
	if envVar == "" {
		return "", nil
	}
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, envVar)
	}
	return key, nil
}
