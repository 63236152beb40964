package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/moviesearch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize moviesearch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the dataset, vector store, and embedding provider, and writes a .moviesearch.yml file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
