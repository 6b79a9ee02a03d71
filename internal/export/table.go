// Package export renders snapshots for humans, as terminal tables or as an
// xlsx workbook.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cryptorewards-backend/internal/collector"
	"cryptorewards-backend/internal/rewards"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NewTable creates a table writer with the house style that renders to out.
func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func lockup(days int) string {
	if days == 0 {
		return "Flexible"
	}
	return fmt.Sprintf("%d days", days)
}

// SummaryTable writes one row per snapshot.
func SummaryTable(out io.Writer, snapshots []rewards.ExchangeSnapshot) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"Platform", "Staking Offers", "Campaigns", "Best APY", "Last Updated"})
	for _, s := range snapshots {
		t.AppendRow(table.Row{
			s.Platform,
			len(s.StakingOffers),
			len(s.Campaigns),
			bestAPY(s.StakingOffers),
			s.LastUpdated.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
}

func bestAPY(offers []rewards.StakingOffer) string {
	best := ""
	bestValue := -1.0
	for _, o := range offers {
		v, err := rewards.RateValue(o.APY)
		if err != nil {
			continue
		}
		if v > bestValue {
			bestValue = v
			best = fmt.Sprintf("%s%% (%s)", o.APY, o.Symbol)
		}
	}
	if best == "" {
		return "-"
	}
	return best
}

// SnapshotTables writes the staking offers and campaigns of one snapshot.
func SnapshotTables(out io.Writer, s rewards.ExchangeSnapshot) {
	fmt.Fprintf(out, "%s (%s)\n", s.Platform, s.Website)

	staking := NewTable(out)
	staking.SetTitle("Staking")
	staking.AppendHeader(table.Row{"Coin", "Symbol", "APY", "Lockup", "Minimum", "Features", "Rating"})
	for _, o := range s.StakingOffers {
		staking.AppendRow(table.Row{
			o.Coin,
			o.Symbol,
			o.APY + "%",
			lockup(o.LockupDays),
			o.MinStaking,
			strings.Join(o.Features, ", "),
			strconv.FormatFloat(o.Rating, 'f', 1, 64),
		})
	}
	staking.Render()

	campaigns := NewTable(out)
	campaigns.SetTitle("Campaigns")
	campaigns.AppendHeader(table.Row{"Name", "Reward", "Expires", "Requirements"})
	for _, c := range s.Campaigns {
		campaigns.AppendRow(table.Row{
			c.Name,
			c.Reward,
			c.ExpiryDate,
			strings.Join(c.Requirements, ", "),
		})
	}
	campaigns.Render()
}

// ResultsTable writes the outcome of a collection cycle.
func ResultsTable(out io.Writer, ids []string, results map[string]bool) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"Source", "Result"})
	for _, id := range ids {
		ok, ran := results[id]
		status := "skipped"
		switch {
		case ran && ok:
			status = "ok"
		case ran:
			status = "failed"
		}
		t.AppendRow(table.Row{id, status})
	}
	t.Render()
}

// HistoryTable writes source runs, newest first.
func HistoryTable(out io.Writer, runs []collector.RunRecord) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"Started", "Source", "Result", "Staking", "Campaigns", "Took", "Error"})
	for _, run := range runs {
		result := "ok"
		if !run.OK {
			result = "failed"
		}
		t.AppendRow(table.Row{
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Source,
			result,
			run.StakingOffers,
			run.Campaigns,
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			run.Error,
		})
	}
	t.Render()
}
