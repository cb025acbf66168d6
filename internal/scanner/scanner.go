// Package scanner walks a filesystem root and yields the text documents
// that pass the ingestion policy: gitignore rules, include/exclude globs,
// an extension allowlist, a size ceiling, and a binary sniff. Files that
// fail a gate are reported, not silently dropped. The walk never mutates
// the filesystem.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFileSize is the maximum file size to ingest (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// ErrStopScan may be returned by a visitor to end the walk early without error.
var ErrStopScan = errors.New("scanner: stop")

// SkipReason classifies why a file was excluded from ingestion.
type SkipReason string

const (
	ReasonIgnoreRule SkipReason = "ignore-rule"
	ReasonSecret     SkipReason = "secret-detected"
	ReasonTooLarge   SkipReason = "too-large"
	ReasonBinary     SkipReason = "binary"
	ReasonUnreadable SkipReason = "unreadable"
)

// SkippedFile records a file excluded during a scan and why.
type SkippedFile struct {
	Path    string     `json:"path"`
	Reason  SkipReason `json:"reason"`
	Details string     `json:"details,omitempty"`
}

// Document is a single text file yielded by a scan. Documents are
// ephemeral; they exist only for the duration of the visit.
type Document struct {
	Path    string // absolute path on disk
	RelPath string // path relative to the scan root, slash-separated
	Name    string // base filename
	Ext     string // lower-cased extension including the dot, may be empty
	Content string
}

// Options controls a scan.
type Options struct {
	Include          []string // glob patterns; only matching files are included
	Exclude          []string // glob patterns; matching files are excluded
	RespectGitIgnore bool     // honour .gitignore at the root
	MaxFiles         int      // stop after this many documents (0 = unlimited)
	MaxFileSize      int64    // size ceiling in bytes (0 = use default)
}

// VisitFunc receives each document as it is read. Returning ErrStopScan
// ends the walk cleanly; any other error aborts it.
type VisitFunc func(doc Document) error

// Scan walks the tree rooted at root depth-first and calls visit for every
// file that passes all gates, in directory order. It returns the skip
// report for the walk. The walk checks ctx between files, so cancellation
// has per-file granularity. Calling Scan again restarts from the root.
func Scan(ctx context.Context, root string, opts Options, visit VisitFunc) ([]SkippedFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanner: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanner: root %s is not a directory", absRoot)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var gitignorePatterns []string
	if opts.RespectGitIgnore {
		gitignorePatterns = loadGitignore(filepath.Join(absRoot, ".gitignore"))
	}

	var skipped []SkippedFile
	visited := 0

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()

		if d.IsDir() {
			if path != absRoot && shouldExcludeDir(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if matchesGitignore(relSlash, gitignorePatterns) {
			skipped = append(skipped, SkippedFile{Path: relSlash, Reason: ReasonIgnoreRule, Details: "matched .gitignore"})
			return nil
		}
		if !MatchesInclude(relSlash, opts.Include) || MatchesExclude(relSlash, opts.Exclude) {
			skipped = append(skipped, SkippedFile{Path: relSlash, Reason: ReasonIgnoreRule, Details: "matched exclude pattern"})
			return nil
		}

		if !isRecognizedText(name) {
			skipped = append(skipped, SkippedFile{Path: relSlash, Reason: ReasonBinary, Details: "unrecognized extension"})
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skipped = append(skipped, SkippedFile{Path: relSlash, Reason: ReasonUnreadable, Details: err.Error()})
			return nil
		}
		if info.Size() > maxSize {
			skipped = append(skipped, SkippedFile{
				Path:    relSlash,
				Reason:  ReasonTooLarge,
				Details: fmt.Sprintf("%d bytes exceeds limit of %d", info.Size(), maxSize),
			})
			return nil
		}

		content, reason, err := readText(path)
		if err != nil {
			skipped = append(skipped, SkippedFile{Path: relSlash, Reason: reason, Details: err.Error()})
			return nil
		}

		doc := Document{
			Path:    path,
			RelPath: relSlash,
			Name:    name,
			Ext:     normalizedExt(name),
			Content: content,
		}
		if err := visit(doc); err != nil {
			return err
		}

		visited++
		if opts.MaxFiles > 0 && visited >= opts.MaxFiles {
			return ErrStopScan
		}
		return nil
	})

	if err != nil && !errors.Is(err, ErrStopScan) {
		return skipped, fmt.Errorf("scanner: traversal: %w", err)
	}
	return skipped, nil
}

// readText reads a file and verifies it decodes as text. It returns the
// skip reason alongside the error so the caller can classify the failure.
func readText(path string) (string, SkipReason, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ReasonUnreadable, err
	}
	defer f.Close()

	// NUL bytes in the first 512 bytes are a simple but effective binary heuristic.
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", ReasonUnreadable, err
	}
	for i := 0; i < n; i++ {
		if head[i] == 0 {
			return "", ReasonBinary, errors.New("NUL byte in content")
		}
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return "", ReasonUnreadable, err
	}
	content := append(head[:n], rest...)

	if !utf8.Valid(content) {
		return "", ReasonUnreadable, errors.New("content is not valid UTF-8")
	}
	return string(content), "", nil
}

func normalizedExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
