package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/corpora/internal/ingest"
	"github.com/ziadkadry99/corpora/internal/search"
	"github.com/ziadkadry99/corpora/internal/secrets"
	"github.com/ziadkadry99/corpora/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP ingestion and search server",
	Long:  `Starts the corpora HTTP server exposing ingestion and semantic search endpoints, including a websocket stream for live ingestion progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort == 0 {
			serverPort = cfg.Server.Port
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

		detector := secrets.NewDefaultDetector()
		newIngestor := func(fn ingest.ProgressFunc) server.Ingestor {
			p := ingest.NewPipeline(embedder, store, detector)
			p.SetProgressFunc(fn)
			return p
		}

		srv := server.New(server.Config{
			Port:       serverPort,
			AllowAll:   cfg.Server.AllowAll,
			Model:      cfg.Embedding.Model,
			IngestOpts: ingestOptionsFromConfig(cfg),
		}, newIngestor, search.NewPlanner(embedder, store), store)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "corpora server v%s starting on port %d\n", Version, serverPort)
		fmt.Fprintf(os.Stderr, "  Store: %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
		fmt.Fprintf(os.Stderr, "  Model: %s\n", cfg.Embedding.Model)

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
