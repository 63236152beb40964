package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/moviesearch/internal/config"
	"github.com/ziadkadry99/moviesearch/internal/vectordb"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a compressed snapshot of the chromem vector store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendChromem {
			return fmt.Errorf("export is only supported for the chromem backend, not %s", cfg.Backend)
		}

		handle := newStoreHandle(cfg)
		defer handle.Close()
		store, err := handle.Get(context.Background())
		if err != nil {
			return err
		}

		chromemStore, ok := store.(*vectordb.ChromemStore)
		if !ok {
			return fmt.Errorf("unexpected store type %T", store)
		}
		count, _ := chromemStore.Count(cmd.Context())
		if err := chromemStore.Export(args[0]); err != nil {
			return fmt.Errorf("exporting store: %w", err)
		}
		fmt.Printf("Exported %d movies to %s\n", count, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
