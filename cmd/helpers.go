package cmd

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/corpora/internal/config"
	"github.com/ziadkadry99/corpora/internal/embeddings"
	"github.com/ziadkadry99/corpora/internal/ingest"
	"github.com/ziadkadry99/corpora/internal/vectorstore"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `corpora init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// Shared by the ingest, query, serve, and server commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.Embedding.Model)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.Dimensions, cfg.Embedding.BaseURL, nil), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// openStoreFromConfig opens the configured vector store backend.
func openStoreFromConfig(cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		return vectorstore.NewSQLiteStore(cfg.Store.Path, cfg.Embedding.Dimensions)
	case config.DriverChromem:
		return vectorstore.NewChromemStore(cfg.Store.Path, cfg.Embedding.Dimensions)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// ingestOptionsFromConfig maps the config's ingestion policy onto
// pipeline options.
func ingestOptionsFromConfig(cfg *config.Config) ingest.Options {
	return ingest.Options{
		Include:          cfg.Ingest.Include,
		Exclude:          cfg.Ingest.Exclude,
		RespectGitIgnore: cfg.Ingest.RespectGitIgnore,
		ScanSecrets:      cfg.Ingest.ScanSecrets,
		SkipSecretFiles:  cfg.Ingest.SkipSecretFiles,
		MaxFiles:         cfg.Ingest.MaxFiles,
		MaxFileSizeMB:    cfg.Ingest.MaxFileSizeMB,
		ChunkSize:        cfg.Ingest.ChunkSize,
	}
}
