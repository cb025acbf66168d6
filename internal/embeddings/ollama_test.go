package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newOllamaTestServer returns a server answering /api/embed with a fixed
// 3-dimensional vector and recording the received request bodies.
func newOllamaTestServer(t *testing.T, requests *[]ollamaEmbedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		*requests = append(*requests, req)

		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
}

func TestOllamaEmbed(t *testing.T) {
	var requests []ollamaEmbedRequest
	srv := newOllamaTestServer(t, &requests)
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 3, srv.URL, srv.Client())

	vectors, err := e.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if len(vectors[0]) != 3 {
		t.Errorf("vector dimensions = %d, want 3", len(vectors[0]))
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 upstream requests, got %d", len(requests))
	}
	if requests[0].Model != "nomic-embed-text" || requests[0].Input != "first" {
		t.Errorf("first request = %+v", requests[0])
	}
}

func TestOllamaEmbed_DimensionMismatch(t *testing.T) {
	var requests []ollamaEmbedRequest
	srv := newOllamaTestServer(t, &requests)
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 768, srv.URL, srv.Client())
	if _, err := e.Embed(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error for wrong vector dimensions")
	}
}

func TestOllamaEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 3, srv.URL, srv.Client())
	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error")
	}

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if pe.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", pe.StatusCode)
	}
	if !IsRetryable(err) {
		t.Error("500 should be retryable")
	}
}

func TestOllamaEmbed_BadRequestNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown model", http.StatusBadRequest)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("bogus", 3, srv.URL, srv.Client())
	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRetryable(err) {
		t.Error("400 should not be retryable")
	}
}

func TestOllamaEmbed_Unreachable(t *testing.T) {
	// A closed server simulates a provider that is down.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 3, srv.URL, nil)
	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error")
	}

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if pe.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for unreachable provider", pe.StatusCode)
	}
	if !IsRetryable(err) {
		t.Error("unreachable provider should be retryable")
	}
}

func TestOllamaDefaults(t *testing.T) {
	e := NewOllamaEmbedder("nomic-embed-text", 768, "", nil)
	if e.baseURL != defaultOllamaBaseURL {
		t.Errorf("baseURL = %q, want %q", e.baseURL, defaultOllamaBaseURL)
	}
	if e.httpClient == nil {
		t.Error("nil httpClient should be replaced with a default")
	}
	if got := e.Name(); got != "ollama/nomic-embed-text" {
		t.Errorf("Name() = %q", got)
	}
	if e.Dimensions() != 768 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}
}

func TestRetryableMatrix(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{404, false},
	}
	for _, tt := range tests {
		pe := &ProviderError{Provider: "test", StatusCode: tt.status}
		if got := pe.Retryable(); got != tt.want {
			t.Errorf("Retryable(status %d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
