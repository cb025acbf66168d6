package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Semantic indexing and retrieval for text corpora",
	Long: `Corpora ingests folders and source repositories into a vector-indexed
store and answers semantic similarity queries over them. It integrates
with AI agents via MCP so retrieved chunks can ground their answers.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".corpora.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
