package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultHTTPTimeout   = 60 * time.Second
)

// OllamaEmbedder generates embeddings via the Ollama-compatible HTTP API:
// POST {model, input} to /api/embed, read {embeddings: [[...]]}.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewOllamaEmbedder creates a new Ollama embedder. model is the model name
// (e.g. "nomic-embed-text"), dimensions its output dimension count.
// baseURL defaults to http://localhost:11434 if empty. A nil httpClient
// gets a client with a sane timeout; passing a shared client is preferred
// so concurrent ingestion and query paths reuse one connection pool.
func NewOllamaEmbedder(model string, dimensions int, baseURL string, httpClient *http.Client) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &OllamaEmbedder{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		httpClient: httpClient,
	}
}

func (e *OllamaEmbedder) Name() string {
	return "ollama/" + e.model
}

func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		emb, err := e.embedSingle(ctx, text)
		if err != nil {
			return nil, err
		}
		results = append(results, emb)
	}
	return results, nil
}

func (e *OllamaEmbedder) embedSingle(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{
		Model: e.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: e.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{
			Provider:   e.Name(),
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("ollama returned no embeddings")
	}

	vec := result.Embeddings[0]
	if e.dimensions > 0 && len(vec) != e.dimensions {
		return nil, fmt.Errorf("ollama returned %d-dimensional vector, expected %d", len(vec), e.dimensions)
	}
	return vec, nil
}
