package embeddings

import (
	"context"
	"fmt"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts. A single failed
	// text fails the whole call; use EmbedEach for per-item semantics.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	results, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("embedder %s returned no embeddings", e.Name())
	}
	return results[0], nil
}

// EmbedEach embeds every text independently, one call per item. A failed
// item leaves a nil vector and its error at the matching index; it never
// aborts the rest of the batch.
func EmbedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, []error) {
	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	for i, text := range texts {
		vectors[i], errs[i] = EmbedOne(ctx, e, text)
	}
	return vectors, errs
}
