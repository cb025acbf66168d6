package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/corpora/internal/mcp"
	"github.com/ziadkadry99/corpora/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing corpus search tools for AI agents like Claude Code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
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

		count, err := store.Count(context.Background())
		if err != nil {
			return fmt.Errorf("reading vector store: %w", err)
		}
		if count == 0 {
			// Search results will be empty until an ingest runs, but the
			// server is still useful to have connected.
			fmt.Fprintln(os.Stderr, "Warning: vector store is empty. Run `corpora ingest <path>` first.")
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "corpora MCP server started on stdio (store=%s, records=%d)\n", cfg.Store.Path, count)

		srv := mcpserver.NewServer(search.NewPlanner(embedder, store))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
