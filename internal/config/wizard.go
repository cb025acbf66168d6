package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. The caller is responsible for saving it.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to corpora! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"ollama", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := EmbeddingProvider(providerStr)
	model, dimensions := GetPreset(provider)

	// 2. Embedding model, defaulting to the provider preset.
	modelPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: model,
	}
	model, err = modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model prompt: %w", err)
	}

	// 3. Vector dimensions for the chosen model.
	dimPrompt := promptui.Prompt{
		Label:   "Embedding dimensions",
		Default: strconv.Itoa(dimensions),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	dimStr, err := dimPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dimensions prompt: %w", err)
	}
	dimensions, _ = strconv.Atoi(dimStr)

	// 4. Store driver.
	driverPrompt := promptui.Select{
		Label: "Select vector store backend",
		Items: []string{
			"sqlite  - durable single-file database",
			"chromem - in-memory with snapshot persistence",
		},
	}
	driverIdx, _, err := driverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	drivers := []StoreDriver{DriverSQLite, DriverChromem}

	// 5. Secret scanning policy.
	secretsPrompt := promptui.Select{
		Label: "Files containing credential-like patterns",
		Items: []string{
			"skip   - exclude them from the index",
			"flag   - index them but report a warning",
			"ignore - do not scan for secrets",
		},
	}
	secretsIdx, _, err := secretsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("secrets selection: %w", err)
	}

	cfg.Embedding.Provider = provider
	cfg.Embedding.Model = model
	cfg.Embedding.Dimensions = dimensions
	cfg.Store.Driver = drivers[driverIdx]
	if cfg.Store.Driver == DriverChromem {
		cfg.Store.Path = ".corpora/chromem"
	}
	cfg.Ingest.ScanSecrets = secretsIdx != 2
	cfg.Ingest.SkipSecretFiles = secretsIdx == 0

	return cfg, nil
}
