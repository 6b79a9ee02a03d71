package cmd

import (
	"os"

	"cryptorewards-backend/internal/export"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the exchanges that can be collected.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		t := export.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Platform", "Website"})
		for _, src := range application.Sources {
			p := src.Platform()
			t.AppendRow(table.Row{src.ID(), p.Name, p.Website})
		}
		t.Render()
		return nil
	},
}
