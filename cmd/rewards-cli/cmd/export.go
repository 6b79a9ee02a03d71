package cmd

import (
	"fmt"

	"cryptorewards-backend/internal/export"

	"github.com/spf13/cobra"
)

var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "rewards.xlsx", "Path of the xlsx workbook to write.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored snapshot to an xlsx workbook.",
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
		err = export.WriteWorkbook(exportOut, snapshots)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d platforms to %s\n", len(snapshots), exportOut)
		return nil
	},
}
