package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/moviesearch/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Recommend movies matching a free-text query",
	Long:  `Embeds the query, finds the closest movie descriptions in the vector store, and prints them with their rating and similarity.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntP("n", "n", search.DefaultResults, "number of movies to show (1-8)")
	searchCmd.Flags().Float64("min-rating", 0, "minimum rating; 0 disables the filter")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	n, _ := cmd.Flags().GetInt("n")
	minRating, _ := cmd.Flags().GetFloat64("min-rating")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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
		service.WithHistory(hist, "cli")
	}

	results, err := service.Search(ctx, search.Query{
		Text:      strings.Join(args, " "),
		NResults:  n,
		MinRating: minRating,
	})
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	case errors.Is(err, search.ErrResultCount):
		return err
	case err != nil:
		// Store failures degrade to an empty result.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		results = nil
	}

	if jsonOutput {
		if results == nil {
			results = []search.Result{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Print(search.FormatResults(results))
	if len(results) == 0 {
		fmt.Println()
	}
	return nil
}
