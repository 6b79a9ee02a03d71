package cmd

import (
	"os"

	"cryptorewards-backend/internal/export"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Summarize every stored snapshot.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		snapshots, err := st.List()
		if err != nil {
			return err
		}
		export.SummaryTable(os.Stdout, snapshots)
		return nil
	},
}
