package vectorstore

import (
	"context"
	"errors"
	"testing"
)

func newTestChromemStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore("", 3)
	if err != nil {
		t.Fatalf("NewChromemStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestChromemUpsertIdempotent(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	rec := Record{
		FilePath:   "a.txt",
		ChunkIndex: 0,
		ChunkText:  "original",
		Embedding:  []float32{1, 0, 0},
	}
	for i := 0; i < 3; i++ {
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() #%d error: %v", i, err)
		}
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("repeated upsert of one key: Count() = %d, want 1", n)
	}

	rec.ChunkText = "replaced"
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() replace error: %v", err)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("replacing upsert: Count() = %d, want 1", n)
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].ChunkText != "replaced" {
		t.Errorf("expected replaced text, got %+v", results)
	}

	rec.ChunkIndex = 1
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() second chunk error: %v", err)
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("distinct chunk index: Count() = %d, want 2", n)
	}
}

func TestChromemSearchOrdering(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	recs := []Record{
		{FilePath: "orthogonal.txt", ChunkIndex: 0, ChunkText: "orthogonal", Embedding: []float32{0, 1, 0}},
		{FilePath: "exact.txt", ChunkIndex: 0, ChunkText: "exact", Embedding: []float32{1, 0, 0}},
		{FilePath: "near.txt", ChunkIndex: 0, ChunkText: "near", Embedding: []float32{0.995, 0.0995, 0}},
	}
	for _, r := range recs {
		if err := store.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert(%s) error: %v", r.FilePath, err)
		}
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantOrder := []string{"exact.txt", "near.txt", "orthogonal.txt"}
	for i, want := range wantOrder {
		if results[i].FilePath != want {
			t.Errorf("result %d = %s, want %s", i, results[i].FilePath, want)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("result %d distance %f < previous %f", i, results[i].Distance, results[i-1].Distance)
		}
	}
}

func TestChromemSearchEmptyStore(t *testing.T) {
	store := newTestChromemStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() on empty store error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty store returned %d results", len(results))
	}
}

func TestChromemLimitClamped(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec := Record{FilePath: "a.txt", ChunkIndex: i, ChunkText: "chunk", Embedding: []float32{1, float32(i), 0}}
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error: %v", err)
		}
	}

	// Asking for more results than records must not error.
	results, err := store.Search(ctx, []float32{1, 0, 0}, 50)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestChromemDimensionMismatch(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, Record{FilePath: "a", ChunkIndex: 0, Embedding: []float32{1, 0}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Upsert with wrong dims: error = %v, want ErrDimensionMismatch", err)
	}

	_, err = store.Search(ctx, []float32{1}, 5)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search with wrong dims: error = %v, want ErrDimensionMismatch", err)
	}
}

func TestChromemPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewChromemStore(dir, 3)
	if err != nil {
		t.Fatalf("NewChromemStore() error: %v", err)
	}
	rec := Record{FilePath: "a.txt", ChunkIndex: 0, ChunkText: "persisted", Embedding: []float32{1, 0, 0}}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}
	store.Close()

	reopened, err := NewChromemStore(dir, 3)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	if n, _ := reopened.Count(ctx); n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}
