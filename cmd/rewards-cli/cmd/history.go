package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cryptorewards-backend/internal/app"
	"cryptorewards-backend/internal/collector"
	"cryptorewards-backend/internal/export"

	"github.com/spf13/cobra"
)

var (
	historyLimit     int
	historyPruneDays int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show.")
	historyCmd.Flags().IntVar(&historyPruneDays, "prune-days", 0, "Delete runs older than this many days first.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [source]",
	Short: "Show the latest source runs.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := app.OpenHistory(cfg)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("run history is disabled")
		}
		defer store.Close()

		if historyPruneDays > 0 {
			before := time.Now().AddDate(0, 0, -historyPruneDays)
			removed, err := store.Prune(cmd.Context(), before)
			if err != nil {
				return err
			}
			fmt.Printf("pruned %d runs\n", removed)
		}

		var runs []collector.RunRecord
		if len(args) == 1 {
			runs, err = store.ForSource(cmd.Context(), args[0], historyLimit)
		} else {
			runs, err = store.Recent(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}
		export.HistoryTable(os.Stdout, runs)
		return nil
	},
}
