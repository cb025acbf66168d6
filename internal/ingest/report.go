package ingest

import (
	"fmt"
	"time"

	"github.com/ziadkadry99/corpora/internal/scanner"
)

// Report summarizes one ingestion run. Ingestion is best-effort: skips and
// per-chunk failures are enumerated here instead of aborting the run.
type Report struct {
	Success        bool                  `json:"success"`
	FilesProcessed int                   `json:"filesProcessed"`
	ChunksCreated  int                   `json:"chunksCreated"`
	FilesSkipped   []scanner.SkippedFile `json:"filesSkipped"`
	Errors         []string              `json:"errors"`
	Warnings       []string              `json:"warnings,omitempty"`
	Message        string                `json:"message"`
	Duration       time.Duration         `json:"-"`
}

// finalize stamps the outcome fields once the run is over.
func (r *Report) finalize(start time.Time) {
	r.Duration = time.Since(start)
	r.Success = len(r.Errors) == 0
	if r.FilesSkipped == nil {
		r.FilesSkipped = []scanner.SkippedFile{}
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}

	r.Message = fmt.Sprintf("Ingested %d file(s), %d chunk(s), skipped %d, in %s",
		r.FilesProcessed, r.ChunksCreated, len(r.FilesSkipped), r.Duration.Round(time.Millisecond))
	if len(r.Errors) > 0 {
		r.Message += fmt.Sprintf("; %d error(s)", len(r.Errors))
	}
}
