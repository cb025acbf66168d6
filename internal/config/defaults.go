package config

// embeddingPresets maps each provider to its default model and dimension count.
var embeddingPresets = map[EmbeddingProvider]struct {
	Model      string
	Dimensions int
}{
	ProviderOllama: {Model: "nomic-embed-text", Dimensions: 768},
	ProviderOpenAI: {Model: "text-embedding-3-small", Dimensions: 1536},
}

// DefaultExcludes are glob patterns excluded from ingestion by default.
var DefaultExcludes = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	"*.min.js",
	"*.min.css",
	"*.lock",
	"go.sum",
	"package-lock.json",
	"yarn.lock",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   ProviderOllama,
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   ".corpora/corpora.db",
		},
		Ingest: IngestConfig{
			Include:          []string{"**"},
			Exclude:          DefaultExcludes,
			RespectGitIgnore: true,
			ScanSecrets:      true,
			SkipSecretFiles:  true,
			MaxFileSizeMB:    1,
			ChunkSize:        400,
		},
		Server: ServerConfig{
			Port: 8420,
		},
	}
}

// GetPreset returns the default model and dimensions for the given provider.
// Returns the Ollama preset if the provider is not found.
func GetPreset(provider EmbeddingProvider) (model string, dimensions int) {
	if p, ok := embeddingPresets[provider]; ok {
		return p.Model, p.Dimensions
	}
	p := embeddingPresets[ProviderOllama]
	return p.Model, p.Dimensions
}
