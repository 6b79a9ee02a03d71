package cmd

import (
	"os"

	"cryptorewards-backend/internal/export"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <platform>",
	Short: "Show the staking offers and campaigns stored for a platform.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		snapshot, err := st.Get(args[0])
		if err != nil {
			return err
		}
		export.SnapshotTables(os.Stdout, snapshot)
		return nil
	},
}
