// Package vectorstore persists embedding records and answers
// nearest-neighbor queries over them. Records are keyed by
// (file path, chunk index): upserting the same key replaces the existing
// record, which is what makes re-ingestion idempotent. Ranking uses
// cosine distance (1 - cosine similarity), ascending.
//
// Both drivers rank with an exact scan, which stays fast into the tens
// of thousands of records a single-repo index reaches. Past that, the
// Store interface is the seam for a sub-linear index; a pure-Go HNSW
// library such as github.com/hupe1980/vecgo would slot in as a third
// driver without touching callers.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDimensionMismatch is returned when a vector's dimension does not match
// the store's configured embedding dimension. This is a configuration
// error; vectors are never truncated or padded.
var ErrDimensionMismatch = errors.New("vectorstore: embedding dimension mismatch")

// Record is one persisted embedding row.
type Record struct {
	ID         string
	FilePath   string
	FileName   string
	ChunkIndex int
	ChunkText  string
	TokenCount int
	Embedding  []float32
	CreatedAt  time.Time
}

// SearchResult is one ranked hit. Distance is cosine distance in [0, 2];
// smaller is more similar.
type SearchResult struct {
	FilePath   string  `json:"filePath"`
	ChunkIndex int     `json:"chunkIndex"`
	ChunkText  string  `json:"chunkText"`
	Distance   float64 `json:"distance"`
}

// Store is the storage contract shared by all drivers. Implementations own
// write atomicity on the (FilePath, ChunkIndex) key; callers may upsert
// different keys concurrently without coordination.
type Store interface {
	// Upsert inserts the record or replaces the one sharing its
	// (FilePath, ChunkIndex). Safe to call repeatedly with identical input.
	Upsert(ctx context.Context, rec Record) error

	// Search returns at most limit records ordered by ascending cosine
	// distance from the query vector. Ties keep insertion order.
	Search(ctx context.Context, query []float32, limit int) ([]SearchResult, error)

	// Count returns the total number of persisted records.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying storage.
	Close() error
}

// checkDimensions validates a vector against the configured dimension.
func checkDimensions(vec []float32, want int) error {
	if len(vec) != want {
		return fmt.Errorf("%w: got %d, store configured for %d", ErrDimensionMismatch, len(vec), want)
	}
	return nil
}

// cosineDistance computes 1 - cosine similarity. Zero-magnitude vectors
// have no direction; they rank last at the maximum distance of 2.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
