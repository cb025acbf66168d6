package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ziadkadry99/corpora/internal/ingest"
	"github.com/ziadkadry99/corpora/internal/search"
)

// ingestRequest is the repository ingestion request body. The pointer
// fields distinguish "absent" (use the server default) from an explicit
// false.
type ingestRequest struct {
	RepositoryPath       string `json:"repositoryPath"`
	Model                string `json:"model,omitempty"`
	RespectGitIgnore     *bool  `json:"respectGitIgnore,omitempty"`
	ScanForSecrets       *bool  `json:"scanForSecrets,omitempty"`
	SkipFilesWithSecrets *bool  `json:"skipFilesWithSecrets,omitempty"`
	MaxFiles             int    `json:"maxFiles,omitempty"`
	MaxFileSizeMb        int    `json:"maxFileSizeMb,omitempty"`
}

// validateModel rejects a requested embedding model that differs from the
// server's configured one. The server holds a single embedder; silently
// embedding with a different model than the client asked for would poison
// later queries, so a mismatch is an error, not a substitution.
func (s *Server) validateModel(requested string) error {
	if requested != "" && requested != s.cfg.Model {
		return fmt.Errorf("model %q does not match the configured embedding model %q", requested, s.cfg.Model)
	}
	return nil
}

// options merges the request over the server's default ingestion options.
func (req *ingestRequest) options(base ingest.Options) ingest.Options {
	opts := base
	if req.RespectGitIgnore != nil {
		opts.RespectGitIgnore = *req.RespectGitIgnore
	}
	if req.ScanForSecrets != nil {
		opts.ScanSecrets = *req.ScanForSecrets
	}
	if req.SkipFilesWithSecrets != nil {
		opts.SkipSecretFiles = *req.SkipFilesWithSecrets
	}
	if req.MaxFiles > 0 {
		opts.MaxFiles = req.MaxFiles
	}
	if req.MaxFileSizeMb > 0 {
		opts.MaxFileSizeMB = req.MaxFileSizeMb
	}
	return opts
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RepositoryPath == "" {
		writeError(w, http.StatusBadRequest, "repositoryPath is required")
		return
	}
	if err := s.validateModel(req.Model); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.newIngestor(nil).Run(r.Context(), req.RepositoryPath, req.options(s.cfg.IngestOpts))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Limit == 0 {
		req.Limit = search.DefaultLimit
	}

	results, err := s.searcher.SearchSimilar(r.Context(), req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, search.ErrBlankQuery) || errors.Is(err, search.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": count,
		"model":   s.cfg.Model,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
