package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/corpora/internal/search"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Semantically search the ingested corpus",
	Long:  `Embeds a natural language query and returns the stored chunks closest to it by cosine distance.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", search.DefaultLimit, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("reading vector store: %w", err)
	}
	if count == 0 {
		fmt.Println("Vector store is empty. Run `corpora ingest <path>` first.")
		return nil
	}

	planner := search.NewPlanner(embedder, store)
	results, err := planner.SearchSimilar(ctx, queryText, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, r := range results {
		fmt.Printf("%d. %s (chunk %d, distance %.4f)\n", i+1, r.FilePath, r.ChunkIndex, r.Distance)
		fmt.Println(r.ChunkText)
		fmt.Println()
	}

	return nil
}
