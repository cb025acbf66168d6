// Package progress provides ingestion progress feedback for the CLI.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives progress updates during ingestion. A total of -1 means
// the file count is not known up front.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running interactively, or a
// CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar (or spinner when the total is
// unknown) in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWriter(os.Stderr),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintln(os.Stderr, "Starting ingestion")
}

func (r *CIReporter) Update(current int, message string) {
	if r.total > 0 {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, r.total, message)
		return
	}
	fmt.Fprintf(os.Stderr, "[%d] %s\n", current, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Ingestion complete")
}
