package mcp

import mcplib "github.com/mark3labs/mcp-go/mcp"

// searchCorpusTool defines the search_corpus MCP tool.
var searchCorpusTool = mcplib.NewTool("search_corpus",
	mcplib.WithDescription("Search the ingested corpus semantically. Returns the text chunks most similar to the query, most similar first."),
	mcplib.WithString("query",
		mcplib.Required(),
		mcplib.Description("Natural language search query"),
	),
	mcplib.WithNumber("limit",
		mcplib.Description("Maximum number of results to return (1-100, default 5)"),
	),
)
