package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/corpora/internal/ingest"
	"github.com/ziadkadry99/corpora/internal/progress"
	"github.com/ziadkadry99/corpora/internal/secrets"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a folder or repository into the vector store",
	Long: `Walks the given directory tree, splits every recognized text file into
chunks, embeds each chunk, and stores the embeddings. Re-running over the
same tree updates existing chunks in place instead of duplicating them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("no-gitignore", false, "do not honour .gitignore rules")
	ingestCmd.Flags().Bool("no-secret-scan", false, "do not scan files for credential-like patterns")
	ingestCmd.Flags().Bool("flag-secrets", false, "ingest files containing secrets but report a warning")
	ingestCmd.Flags().Int("max-files", 0, "stop after this many files (0 = unlimited)")
	ingestCmd.Flags().Int("max-file-size-mb", 0, "skip files larger than this (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := ingestOptionsFromConfig(cfg)
	if v, _ := cmd.Flags().GetBool("no-gitignore"); v {
		opts.RespectGitIgnore = false
	}
	if v, _ := cmd.Flags().GetBool("no-secret-scan"); v {
		opts.ScanSecrets = false
	}
	if v, _ := cmd.Flags().GetBool("flag-secrets"); v {
		opts.SkipSecretFiles = false
	}
	if v, _ := cmd.Flags().GetInt("max-files"); v > 0 {
		opts.MaxFiles = v
	}
	if v, _ := cmd.Flags().GetInt("max-file-size-mb"); v > 0 {
		opts.MaxFileSizeMB = v
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	store, err := openStoreFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer store.Close()

	// Ctrl-C cancels cleanly between files.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline := ingest.NewPipeline(embedder, store, secrets.NewDefaultDetector())

	reporter := progress.NewReporter()
	reporter.Start(-1)
	pipeline.SetProgressFunc(func(filesProcessed int, path string) {
		reporter.Update(filesProcessed, path)
	})

	report, err := pipeline.Run(ctx, root, opts)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", root, err)
	}

	fmt.Println(report.Message)
	if verbose {
		for _, sf := range report.FilesSkipped {
			fmt.Fprintf(os.Stderr, "skipped %s: %s (%s)\n", sf.Path, sf.Reason, sf.Details)
		}
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", e)
	}

	return nil
}
