package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
)

// detectDataset returns the first CSV file in the current directory, if any.
func detectDataset() string {
	matches, _ := filepath.Glob("*.csv")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// RunWizard runs an interactive configuration wizard, saves the result
// to path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to moviesearch! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Dataset.
	datasetPrompt := promptui.Prompt{
		Label:   "Path to the movie CSV (globs allowed)",
		Default: detectDataset(),
	}
	dataset, err := datasetPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dataset path: %w", err)
	}
	cfg.DatasetPath = dataset

	// 2. Vector store backend.
	backendPrompt := promptui.Select{
		Label: "Select vector store",
		Items: []string{
			"chromem — embedded, persisted to a local directory",
			"qdrant  — remote Qdrant server over gRPC",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	backends := []StoreBackend{BackendChromem, BackendQdrant}
	cfg.Backend = backends[backendIdx]

	if cfg.Backend == BackendQdrant {
		addrPrompt := promptui.Prompt{
			Label:   "Qdrant gRPC address",
			Default: cfg.QdrantAddr,
		}
		if cfg.QdrantAddr, err = addrPrompt.Run(); err != nil {
			return nil, fmt.Errorf("qdrant address: %w", err)
		}
	} else {
		dirPrompt := promptui.Prompt{
			Label:   "Directory for the embedding store",
			Default: cfg.StoreDir,
		}
		if cfg.StoreDir, err = dirPrompt.Run(); err != nil {
			return nil, fmt.Errorf("store directory: %w", err)
		}
	}

	// 3. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.EmbeddingProvider = ProviderType(providerStr)
	cfg.EmbeddingModel = cfg.ResolvedEmbeddingModel()

	// 4. Batch size.
	batchPrompt := promptui.Prompt{
		Label:   "Ingestion batch size",
		Default: strconv.Itoa(cfg.BatchSize),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	batchStr, err := batchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("batch size: %w", err)
	}
	cfg.BatchSize, _ = strconv.Atoi(batchStr)

	if envVar := APIKeyEnvVar(cfg.EmbeddingProvider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before running moviesearch ingest.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
