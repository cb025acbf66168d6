// Package mcp exposes the query planner to MCP clients. Every outcome
// (success, no results, validation failure, downstream failure) is
// returned as a well-formed tool result; a calling agent never sees a
// transport-level fault for a bad query.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/corpora/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes corpus search.
type Server struct {
	planner *search.Planner
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server around the given planner.
func NewServer(planner *search.Planner) *Server {
	s := &Server{planner: planner}

	s.mcp = server.NewMCPServer(
		"corpora",
		Version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(searchCorpusTool, s.handleSearchCorpus)

	return s
}

// Serve starts the MCP server on stdio. Stdout carries MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
