package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/moviesearch/internal/search"
)

// handleSearchMovies runs one movie search.
func (s *Server) handleSearchMovies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	results, err := s.service.Search(ctx, search.Query{
		Text:      query,
		NResults:  request.GetInt("n_results", search.DefaultResults),
		MinRating: request.GetFloat("min_rating", 0),
	})
	switch {
	case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrResultCount):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("%v. Run `moviesearch ingest` if the collection has not been built yet.", err)), nil
	}

	return mcp.NewToolResultText(search.FormatResults(results)), nil
}

// handleCountMovies reports the collection size.
func (s *Server) handleCountMovies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.service.Count(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d movies indexed.", n)), nil
}
