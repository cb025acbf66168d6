package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "corpus"

// ChromemStore implements Store using chromem-go, which keeps vectors in
// memory (optionally persisted to disk) and searches them with an
// optimized concurrent scan. The (FilePath, ChunkIndex) key maps onto the
// chromem document ID, so re-adding a chunk replaces it in place. Equal
// distances come back in chromem's own order, not insertion order.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimensions int
}

// NewChromemStore creates a chromem-backed store. A non-empty path makes
// the store durable at that directory; an empty path keeps it in memory.
func NewChromemStore(path string, dimensions int) (*ChromemStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vectorstore: dimensions must be positive, got %d", dimensions)
	}

	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, true)
		if err != nil {
			return nil, fmt.Errorf("opening chromem db at %s: %w", path, err)
		}
	}

	// All vectors are computed upstream; chromem must never embed on its own.
	col, err := db.GetOrCreateCollection(collectionName, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: col, dimensions: dimensions}, nil
}

func rejectEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("vectorstore: embeddings must be precomputed")
}

// recordID derives the chromem document ID from the upsert key.
func recordID(filePath string, chunkIndex int) string {
	return filePath + "#" + strconv.Itoa(chunkIndex)
}

func (s *ChromemStore) Upsert(ctx context.Context, rec Record) error {
	if err := checkDimensions(rec.Embedding, s.dimensions); err != nil {
		return err
	}

	id := recordID(rec.FilePath, rec.ChunkIndex)
	// Replace any previous record for this key.
	if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("deleting existing record %s: %w", id, err)
	}

	surrogate := rec.ID
	if surrogate == "" {
		surrogate = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := chromem.Document{
		ID:        id,
		Content:   rec.ChunkText,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"id":          surrogate,
			"file_path":   rec.FilePath,
			"file_name":   rec.FileName,
			"chunk_index": strconv.Itoa(rec.ChunkIndex),
			"token_count": strconv.Itoa(rec.TokenCount),
			"created_at":  createdAt.Format(time.RFC3339Nano),
		},
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("adding record %s: %w", id, err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query []float32, limit int) ([]SearchResult, error) {
	if err := checkDimensions(query, s.dimensions); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	// chromem requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.QueryEmbedding(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		chunkIndex, _ := strconv.Atoi(r.Metadata["chunk_index"])
		searchResults[i] = SearchResult{
			FilePath:   r.Metadata["file_path"],
			ChunkIndex: chunkIndex,
			ChunkText:  r.Content,
			Distance:   float64(1 - r.Similarity),
		}
	}
	return searchResults, nil
}

func (s *ChromemStore) Count(_ context.Context) (int, error) {
	return s.collection.Count(), nil
}

func (s *ChromemStore) Close() error {
	return nil
}
