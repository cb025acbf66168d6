package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CORPORA_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CORPORA_EMBEDDING_MODEL -> embedding.model, etc.
	if err := k.Load(env.Provider("CORPORA_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CORPORA_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
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

// validProviders is the set of recognized embedding provider values.
var validProviders = map[EmbeddingProvider]bool{
	ProviderOllama: true,
	ProviderOpenAI: true,
}

// validDrivers is the set of recognized store driver values.
var validDrivers = map[StoreDriver]bool{
	DriverSQLite:  true,
	DriverChromem: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Embedding.Provider == "" {
		return fmt.Errorf("embedding.provider is required")
	}
	if !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q: must be one of ollama, openai", c.Embedding.Provider)
	}

	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}

	if c.Store.Driver == "" {
		return fmt.Errorf("store.driver is required")
	}
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("invalid store.driver %q: must be one of sqlite, chromem", c.Store.Driver)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive")
	}

	if c.Ingest.MaxFiles < 0 {
		return fmt.Errorf("ingest.max_files must be non-negative")
	}

	if c.Ingest.MaxFileSizeMB < 0 {
		return fmt.Errorf("ingest.max_file_size_mb must be non-negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [0, 65535]")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider EmbeddingProvider) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
