package cmd

import (
	"os"

	"cryptorewards-backend/internal/export"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [source]",
	Short: "Run a collection cycle for one source, or for all of them.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		ids := application.Collector.IDs()
		if len(args) == 0 {
			results := application.Collector.RunAll(cmd.Context())
			export.ResultsTable(os.Stdout, ids, results)
			return nil
		}

		ok, err := application.Collector.RunOne(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		export.ResultsTable(os.Stdout, []string{args[0]}, map[string]bool{args[0]: ok})
		return nil
	},
}
