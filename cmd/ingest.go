package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/moviesearch/internal/ingest"
	"github.com/ziadkadry99/moviesearch/internal/movies"
	"github.com/ziadkadry99/moviesearch/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the movie dataset into the vector store",
	Long: `Reads the movie CSV (dataset_path or DATASET_PATH), drops titles that
appear more than once, normalises genres, and writes the descriptions
to the vector store in batches. A batch that fails is logged and
skipped; the remaining batches are still written.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("dataset", "", "dataset CSV path or glob (overrides config)")
	ingestCmd.Flags().Int("batch-size", 0, "records per store call (overrides config)")
	ingestCmd.Flags().Bool("dry-run", false, "print the batch plan without writing")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dataset, _ := cmd.Flags().GetString("dataset"); dataset != "" {
		cfg.DatasetPath = dataset
	}
	if size, _ := cmd.Flags().GetInt("batch-size"); size > 0 {
		cfg.BatchSize = size
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ds, err := movies.Load(cfg.DatasetPath, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d movies from %d file(s): %d rows, %d rejected, %d duplicate rows dropped\n",
		len(ds.Records), len(ds.Stats.Files), ds.Stats.Rows, ds.Stats.Rejected, ds.Stats.Duplicates)

	if dryRun {
		plan := ingest.NewPipeline(nil, cfg.BatchSize, logger).Plan(ds)
		fmt.Printf("Dry run: %d batches of up to %d records\n", len(plan), cfg.BatchSize)
		for i, b := range plan {
			fmt.Printf("  batch %d: records %d-%d\n", i+1, b.Start, b.End)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	store, err := openStore(ctx, cfg, embedder)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer store.Close()

	pipeline := ingest.NewPipeline(store, cfg.BatchSize, logger)
	pipeline.Backend = string(cfg.Backend)
	pipeline.Collection = cfg.Collection
	pipeline.SetReporter(progress.NewReporter("Ingesting"))

	database, hist, err := openHistory(cfg)
	if err != nil {
		logger.Warn("run history disabled", "error", err)
	} else if hist != nil {
		defer database.Close()
		pipeline.SetRecorder(hist)
	}

	result, err := pipeline.Run(ctx, ds)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d of %d movies in %d batches (%s)\n",
		result.Written, len(ds.Records), result.Batches, result.Duration.Round(time.Millisecond))
	for _, f := range result.Failures {
		fmt.Printf("  failed batch %d-%d: %s\n", f.Start, f.End, f.Error)
	}
	if result.RunID != "" {
		fmt.Printf("Run ID: %s\n", result.RunID)
	}
	return nil
}
