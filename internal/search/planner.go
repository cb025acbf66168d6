// Package search answers free-text similarity queries: embed the query,
// then rank stored chunks by cosine distance. Unlike ingestion, a query is
// all-or-nothing: without the query vector there is nothing meaningful to
// return, so an embedding failure fails the whole request.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/corpora/internal/embeddings"
	"github.com/ziadkadry99/corpora/internal/vectorstore"
)

const (
	// DefaultLimit is the result count used when the caller does not ask
	// for one.
	DefaultLimit = 5
	// MaxLimit caps how many results a single query may request.
	MaxLimit = 100
)

// ErrBlankQuery rejects empty or whitespace-only queries.
var ErrBlankQuery = errors.New("query must not be blank")

// ErrInvalidLimit rejects limits outside [1, MaxLimit].
var ErrInvalidLimit = fmt.Errorf("limit must be between 1 and %d", MaxLimit)

// Planner executes similarity queries against a vector store. The same
// embedding model must be used at ingestion and query time; the planner
// cannot detect a mismatch, it only degrades result quality.
type Planner struct {
	embedder embeddings.Embedder
	store    vectorstore.Store
}

// NewPlanner creates a Planner.
func NewPlanner(embedder embeddings.Embedder, store vectorstore.Store) *Planner {
	return &Planner{embedder: embedder, store: store}
}

// SearchSimilar returns up to limit chunks ranked by ascending cosine
// distance from query. Validation failures are reported before any
// network or storage I/O happens.
func (p *Planner) SearchSimilar(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrBlankQuery
	}
	if limit < 1 || limit > MaxLimit {
		return nil, ErrInvalidLimit
	}

	vec, err := embeddings.EmbedOne(ctx, p.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := p.store.Search(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("searching store: %w", err)
	}
	return results, nil
}
