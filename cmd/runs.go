package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recent ingestion runs, or show one run's failed batches",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().Int("limit", 10, "number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, hist, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if hist == nil {
		fmt.Println("Run history is disabled (history_db is empty).")
		return nil
	}
	defer database.Close()

	ctx := context.Background()

	if len(args) == 1 {
		run, err := hist.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Run %s (%s)\n", run.ID, run.Status)
		fmt.Printf("  Dataset:  %s\n", run.Dataset)
		fmt.Printf("  Store:    %s/%s\n", run.Backend, run.Collection)
		fmt.Printf("  Rows:     %d read, %d rejected, %d duplicates dropped\n", run.RowsRead, run.RowsRejected, run.DuplicatesDropped)
		fmt.Printf("  Written:  %d of %d in %d batches\n", run.Written, run.Records, run.Batches)
		if run.Error != "" {
			fmt.Printf("  Error:    %s\n", run.Error)
		}
		for _, f := range run.Failures {
			fmt.Printf("  failed batch %d-%d: %s\n", f.Start, f.End, f.Error)
		}
		return nil
	}

	runs, err := hist.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No ingestion runs recorded. Use `moviesearch ingest` to build the index.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tWRITTEN\tSKIPPED\tBATCHES\tDATASET")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.Written, r.Records-r.Written, r.Batches, r.Dataset)
	}
	w.Flush()

	return nil
}
