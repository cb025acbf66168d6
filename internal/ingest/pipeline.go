// Package ingest orchestrates the ingestion path: scan -> secret gate ->
// chunk -> embed -> store. One bad file or one failed embedding call never
// aborts a run; everything that went wrong is enumerated in the Report.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/corpora/internal/chunker"
	"github.com/ziadkadry99/corpora/internal/embeddings"
	"github.com/ziadkadry99/corpora/internal/scanner"
	"github.com/ziadkadry99/corpora/internal/secrets"
	"github.com/ziadkadry99/corpora/internal/vectorstore"
)

// ProgressFunc is called after each ingested file.
type ProgressFunc func(filesProcessed int, path string)

// Options controls one ingestion run. Zero values fall back to the
// scanner's and chunker's defaults.
type Options struct {
	Include          []string
	Exclude          []string
	RespectGitIgnore bool
	ScanSecrets      bool
	SkipSecretFiles  bool
	MaxFiles         int
	MaxFileSizeMB    int
	ChunkSize        int
}

// Pipeline wires the ingestion path together. A single Pipeline may be
// shared across runs; it holds no per-run state.
type Pipeline struct {
	embedder   embeddings.Embedder
	store      vectorstore.Store
	detector   *secrets.Detector
	onProgress ProgressFunc
}

// NewPipeline creates a Pipeline. A nil detector disables secret scanning
// regardless of Options.ScanSecrets.
func NewPipeline(embedder embeddings.Embedder, store vectorstore.Store, detector *secrets.Detector) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		store:    store,
		detector: detector,
	}
}

// SetProgressFunc sets the progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

// Run ingests the tree rooted at root. The returned error is non-nil only
// when the scan itself cannot run (bad root, cancelled context); every
// per-file and per-chunk failure is recorded in the Report instead.
func (p *Pipeline) Run(ctx context.Context, root string, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{}

	var maxSize int64
	if opts.MaxFileSizeMB > 0 {
		maxSize = int64(opts.MaxFileSizeMB) << 20
	}

	scanOpts := scanner.Options{
		Include:          opts.Include,
		Exclude:          opts.Exclude,
		RespectGitIgnore: opts.RespectGitIgnore,
		MaxFiles:         opts.MaxFiles,
		MaxFileSize:      maxSize,
	}

	skipped, err := scanner.Scan(ctx, root, scanOpts, func(doc scanner.Document) error {
		p.ingestFile(ctx, doc, opts, report)
		if p.onProgress != nil {
			p.onProgress(report.FilesProcessed, doc.RelPath)
		}
		return nil
	})
	report.FilesSkipped = append(report.FilesSkipped, skipped...)
	if err != nil {
		report.finalize(start)
		return report, err
	}

	report.finalize(start)
	return report, nil
}

// ingestFile runs one document through the secret gate, the chunker, and
// the embed/upsert loop. Chunks are upserted in index order.
func (p *Pipeline) ingestFile(ctx context.Context, doc scanner.Document, opts Options, report *Report) {
	if opts.ScanSecrets && p.detector != nil {
		result := p.detector.Scan(doc.Content)
		if result.Found {
			rules := strings.Join(result.RuleNames(), ", ")
			if opts.SkipSecretFiles {
				report.FilesSkipped = append(report.FilesSkipped, scanner.SkippedFile{
					Path:    doc.RelPath,
					Reason:  scanner.ReasonSecret,
					Details: rules,
				})
				return
			}
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s contains credential-like patterns (%s), ingested anyway", doc.RelPath, rules))
		}
	}

	text := doc.Content
	if doc.Ext == ".md" || doc.Ext == ".markdown" {
		text = chunker.NormalizeMarkdown([]byte(doc.Content))
	}

	chunks := chunker.Split(doc.RelPath, text, opts.ChunkSize)
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, errs := embeddings.EmbedEach(ctx, p.embedder, texts)

	for i, chunk := range chunks {
		if errs[i] != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("embed %s[%d]: %v", chunk.SourcePath, chunk.Index, errs[i]))
			continue
		}

		rec := vectorstore.Record{
			FilePath:   chunk.SourcePath,
			FileName:   doc.Name,
			ChunkIndex: chunk.Index,
			ChunkText:  chunk.Text,
			TokenCount: chunk.TokenCount,
			Embedding:  vectors[i],
		}
		if err := p.store.Upsert(ctx, rec); err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("store %s[%d]: %v", chunk.SourcePath, chunk.Index, err))
			continue
		}
		report.ChunksCreated++
	}

	report.FilesProcessed++
}
