package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchMoviesTool defines the search_movies MCP tool.
var searchMoviesTool = mcp.NewTool("search_movies",
	mcp.WithDescription("Recommend movies whose descriptions best match a free-text query, optionally restricted to a minimum IMDB rating."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Movie genre, feature or topic, e.g. \"mind-bending science fiction\""),
	),
	mcp.WithNumber("n_results",
		mcp.Description("Number of movies to return, 1 to 8 (default 3)"),
	),
	mcp.WithNumber("min_rating",
		mcp.Description("Only return movies rated at least this much (0 to 10; 0 disables the filter)"),
	),
)

// countMoviesTool defines the count_movies MCP tool.
var countMoviesTool = mcp.NewTool("count_movies",
	mcp.WithDescription("Report how many movies are indexed."),
)
