package config

// EmbeddingProvider identifies an embedding provider.
type EmbeddingProvider string

const (
	ProviderOllama EmbeddingProvider = "ollama"
	ProviderOpenAI EmbeddingProvider = "openai"
)

// StoreDriver identifies a vector store backend.
type StoreDriver string

const (
	DriverSQLite  StoreDriver = "sqlite"
	DriverChromem StoreDriver = "chromem"
)

// Config is the top-level corpora configuration, corresponding to .corpora.yml.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	Store     StoreConfig     `yaml:"store" koanf:"store"`
	Ingest    IngestConfig    `yaml:"ingest" koanf:"ingest"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
}

// EmbeddingConfig selects the embedding provider and model.
type EmbeddingConfig struct {
	Provider   EmbeddingProvider `yaml:"provider" koanf:"provider"`
	Model      string            `yaml:"model" koanf:"model"`
	BaseURL    string            `yaml:"base_url" koanf:"base_url"`
	Dimensions int               `yaml:"dimensions" koanf:"dimensions"`
}

// StoreConfig selects and locates the vector store backend.
type StoreConfig struct {
	Driver StoreDriver `yaml:"driver" koanf:"driver"`
	Path   string      `yaml:"path" koanf:"path"`
}

// IngestConfig holds the default ingestion policy.
type IngestConfig struct {
	Include          []string `yaml:"include" koanf:"include"`
	Exclude          []string `yaml:"exclude" koanf:"exclude"`
	RespectGitIgnore bool     `yaml:"respect_gitignore" koanf:"respect_gitignore"`
	ScanSecrets      bool     `yaml:"scan_secrets" koanf:"scan_secrets"`
	SkipSecretFiles  bool     `yaml:"skip_secret_files" koanf:"skip_secret_files"`
	MaxFiles         int      `yaml:"max_files" koanf:"max_files"`
	MaxFileSizeMB    int      `yaml:"max_file_size_mb" koanf:"max_file_size_mb"`
	ChunkSize        int      `yaml:"chunk_size" koanf:"chunk_size"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
