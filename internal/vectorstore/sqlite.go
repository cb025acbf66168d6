package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single-file SQLite database. Vector
// operators are outside what database/sql can express generically, so the
// embedding column holds a little-endian float32 blob and ranking happens
// in Go over an exact scan. That keeps search correct at the corpus sizes
// a single-repo index reaches; the chromem driver is the option for larger
// stores.
type SQLiteStore struct {
	db         *sql.DB
	dimensions int
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
    id TEXT PRIMARY KEY,
    file_path TEXT NOT NULL,
    file_name TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    chunk_text TEXT NOT NULL,
    token_count INTEGER NOT NULL,
    embedding BLOB NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(file_path, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_embeddings_file_path ON embeddings(file_path);
`

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema. dimensions fixes the embedding dimension for the store's lifetime.
func NewSQLiteStore(path string, dimensions int) (*SQLiteStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vectorstore: dimensions must be positive, got %d", dimensions)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db, dimensions: dimensions}, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec Record) error {
	if err := checkDimensions(rec.Embedding, s.dimensions); err != nil {
		return err
	}

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const q = `
INSERT INTO embeddings (id, file_path, file_name, chunk_index, chunk_text, token_count, embedding, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(file_path, chunk_index) DO UPDATE SET
    file_name = excluded.file_name,
    chunk_text = excluded.chunk_text,
    token_count = excluded.token_count,
    embedding = excluded.embedding`

	_, err := s.db.ExecContext(ctx, q,
		id, rec.FilePath, rec.FileName, rec.ChunkIndex,
		rec.ChunkText, rec.TokenCount, encodeVector(rec.Embedding),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting %s[%d]: %w", rec.FilePath, rec.ChunkIndex, err)
	}
	return nil
}

func (s *SQLiteStore) Search(ctx context.Context, query []float32, limit int) ([]SearchResult, error) {
	if err := checkDimensions(query, s.dimensions); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	// rowid order preserves insertion order, which fixes tie-breaking.
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, chunk_index, chunk_text, embedding FROM embeddings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var blob []byte
		if err := rows.Scan(&r.FilePath, &r.ChunkIndex, &r.ChunkText, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding row: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for %s[%d]: %w", r.FilePath, r.ChunkIndex, err)
		}
		if len(vec) != s.dimensions {
			return nil, fmt.Errorf("%w: stored vector for %s[%d] has %d dimensions", ErrDimensionMismatch, r.FilePath, r.ChunkIndex, len(vec))
		}
		r.Distance = cosineDistance(query, vec)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeVector serializes a float32 slice as little-endian bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector deserializes a little-endian float32 blob.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
