package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/moviesearch/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes movie search tools.
type Server struct {
	service *search.Service
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server backed by the search service.
func NewServer(service *search.Service) *Server {
	s := &Server{service: service}

	s.mcp = server.NewMCPServer(
		"moviesearch",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchMoviesTool, s.handleSearchMovies)
	s.mcp.AddTool(countMoviesTool, s.handleCountMovies)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
