package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/moviesearch/internal/mcp"
	"github.com/ziadkadry99/moviesearch/internal/search"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the search_movies and count_movies tools to AI agents.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		handle := newStoreHandle(cfg)
		defer handle.Close()
		service := search.NewService(handle, logger)

		database, hist, err := openHistory(cfg)
		if err != nil {
			logger.Warn("search history disabled", "error", err)
		} else if hist != nil {
			defer database.Close()
			service.WithHistory(hist, "mcp")
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		count, err := service.Count(context.Background())
		if err != nil {
			// Log warning but continue; each tool call reports the failure.
			fmt.Fprintf(os.Stderr, "Warning: vector store unavailable: %v\n", err)
		}
		fmt.Fprintf(os.Stderr, "moviesearch MCP server started on stdio (collection=%s, movies=%d)\n", cfg.Collection, count)

		return mcpserver.NewServer(service).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
