package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/corpora/internal/search"
	"github.com/ziadkadry99/corpora/internal/vectorstore"
)

// handleSearchCorpus performs a semantic search over the vector store.
func (s *Server) handleSearchCorpus(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcplib.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", search.DefaultLimit)

	results, err := s.planner.SearchSimilar(ctx, query, limit)
	if err != nil {
		if errors.Is(err, search.ErrBlankQuery) || errors.Is(err, search.ErrInvalidLimit) {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return mcplib.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcplib.NewToolResultText(fmt.Sprintf(
			"No results for query %q. The corpus may not be ingested yet; run `corpora ingest <path>` first.",
			query,
		)), nil
	}

	return mcplib.NewToolResultText(formatSearchResults(results)), nil
}

// formatSearchResults renders ranked chunks as text for agent consumption.
func formatSearchResults(results []vectorstore.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("File: %s (chunk %d)\n", r.FilePath, r.ChunkIndex))
		sb.WriteString(fmt.Sprintf("Distance: %.4f\n", r.Distance))
		sb.WriteString("\n")
		sb.WriteString(r.ChunkText)
		sb.WriteString("\n")
	}

	return sb.String()
}
