package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/corpora/internal/ingest"
	"github.com/ziadkadry99/corpora/internal/search"
	"github.com/ziadkadry99/corpora/internal/vectorstore"
)

// fakeIngestor records the options it ran with and emits progress for
// two fake files before returning a canned report.
type fakeIngestor struct {
	lastRoot string
	lastOpts ingest.Options
	progress ingest.ProgressFunc
	err      error
}

func (f *fakeIngestor) Run(ctx context.Context, root string, opts ingest.Options) (*ingest.Report, error) {
	f.lastRoot = root
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.progress != nil {
		f.progress(1, "a.txt")
		f.progress(2, "b.txt")
	}
	return &ingest.Report{
		Success:        true,
		FilesProcessed: 2,
		ChunksCreated:  5,
		Message:        "done",
	}, nil
}

// fakeSearcher returns canned results or a configured error.
type fakeSearcher struct {
	results []vectorstore.SearchResult
	err     error
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, search.ErrBlankQuery
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeStore only needs Count for the status endpoint.
type fakeStore struct {
	count int
}

func (f *fakeStore) Upsert(_ context.Context, _ vectorstore.Record) error { return nil }
func (f *fakeStore) Search(_ context.Context, _ []float32, _ int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}
func (f *fakeStore) Count(_ context.Context) (int, error) { return f.count, nil }
func (f *fakeStore) Close() error                         { return nil }

func newTestServer(ing *fakeIngestor, searcher *fakeSearcher, store *fakeStore) *Server {
	factory := func(fn ingest.ProgressFunc) Ingestor {
		ing.progress = fn
		return ing
	}
	return New(Config{
		Port:  8420,
		Model: "nomic-embed-text",
		IngestOpts: ingest.Options{
			RespectGitIgnore: true,
			ScanSecrets:      true,
			SkipSecretFiles:  true,
			ChunkSize:        400,
		},
	}, factory, searcher, store)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeIngestor{}, &fakeSearcher{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandleIngest(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newTestServer(ing, &fakeSearcher{}, &fakeStore{})

	body, _ := json.Marshal(map[string]any{
		"repositoryPath":   "/repo",
		"respectGitIgnore": false,
		"maxFiles":         10,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var report ingest.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !report.Success || report.FilesProcessed != 2 {
		t.Errorf("unexpected report: %+v", report)
	}

	if ing.lastRoot != "/repo" {
		t.Errorf("root = %q", ing.lastRoot)
	}
	// Explicit false overrides the server default of true.
	if ing.lastOpts.RespectGitIgnore {
		t.Error("respectGitIgnore=false was not applied")
	}
	// Absent fields keep the server defaults.
	if !ing.lastOpts.ScanSecrets || !ing.lastOpts.SkipSecretFiles {
		t.Error("absent fields should keep server defaults")
	}
	if ing.lastOpts.MaxFiles != 10 {
		t.Errorf("MaxFiles = %d, want 10", ing.lastOpts.MaxFiles)
	}
}

func TestHandleIngest_Validation(t *testing.T) {
	srv := newTestServer(&fakeIngestor{}, &fakeSearcher{}, &fakeStore{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "{{{"},
		{"missing path", `{"maxFiles": 5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleIngest_ModelMismatch(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newTestServer(ing, &fakeSearcher{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest",
		strings.NewReader(`{"repositoryPath": "/repo", "model": "text-embedding-3-large"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "text-embedding-3-large") {
		t.Errorf("error should name the rejected model: %s", rec.Body.String())
	}
	if ing.lastRoot != "" {
		t.Error("mismatched model must not start an ingestion")
	}

	// The configured model is accepted explicitly.
	req = httptest.NewRequest(http.MethodPost, "/api/ingest",
		strings.NewReader(`{"repositoryPath": "/repo", "model": "nomic-embed-text"}`))
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for the configured model", rec.Code)
	}
}

func TestHandleIngest_RunFailure(t *testing.T) {
	ing := &fakeIngestor{err: errors.New("root does not exist")}
	srv := newTestServer(ing, &fakeSearcher{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"repositoryPath": "/missing"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []vectorstore.SearchResult{
		{FilePath: "a.go", ChunkIndex: 0, ChunkText: "hit", Distance: 0.2},
	}}
	srv := newTestServer(&fakeIngestor{}, searcher, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query": "how does auth work"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Query   string                     `json:"query"`
		Results []vectorstore.SearchResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Query != "how does auth work" {
		t.Errorf("query echoed as %q", resp.Query)
	}
	if len(resp.Results) != 1 || resp.Results[0].FilePath != "a.go" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestHandleSearch_BlankQuery(t *testing.T) {
	srv := newTestServer(&fakeIngestor{}, &fakeSearcher{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query": "  "}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearch_DownstreamFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("store corrupted")}
	srv := newTestServer(&fakeIngestor{}, searcher, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query": "q"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(&fakeIngestor{}, &fakeSearcher{}, &fakeStore{count: 42})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Records int    `json:"records"`
		Model   string `json:"model"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Records != 42 {
		t.Errorf("records = %d, want 42", resp.Records)
	}
	if resp.Model != "nomic-embed-text" {
		t.Errorf("model = %q", resp.Model)
	}
}

func TestIngestWS(t *testing.T) {
	ing := &fakeIngestor{}
	srv := newTestServer(ing, &fakeSearcher{}, &fakeStore{})

	httpSrv := httptest.NewServer(srv.Router())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/ingest/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"repositoryPath": "/repo"}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var events []progressEvent
	for {
		var ev progressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		events = append(events, ev)
		if ev.Type == "report" || ev.Type == "error" {
			break
		}
	}

	if len(events) != 3 {
		t.Fatalf("expected 2 progress events and a report, got %+v", events)
	}
	if events[0].Type != "progress" || events[0].FilesProcessed != 1 || events[0].Path != "a.txt" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Type != "progress" || events[1].FilesProcessed != 2 {
		t.Errorf("second event = %+v", events[1])
	}
	final := events[2]
	if final.Type != "report" || final.Report == nil || final.Report.ChunksCreated != 5 {
		t.Errorf("final event = %+v", final)
	}
}

func TestIngestWS_ModelMismatch(t *testing.T) {
	srv := newTestServer(&fakeIngestor{}, &fakeSearcher{}, &fakeStore{})

	httpSrv := httptest.NewServer(srv.Router())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/ingest/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"repositoryPath": "/repo", "model": "other-model"}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var ev progressEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != "error" || !strings.Contains(ev.Error, "other-model") {
		t.Errorf("event = %+v, want an error naming the rejected model", ev)
	}
}

func TestIngestWS_MissingPath(t *testing.T) {
	srv := newTestServer(&fakeIngestor{}, &fakeSearcher{}, &fakeStore{})

	httpSrv := httptest.NewServer(srv.Router())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/ingest/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var ev progressEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != "error" {
		t.Errorf("event type = %q, want error", ev.Type)
	}
}
