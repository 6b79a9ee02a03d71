package export

import (
	"fmt"
	"strings"

	"cryptorewards-backend/internal/rewards"

	"github.com/xuri/excelize/v2"
)

const (
	StakingSheet   = "Staking"
	CampaignsSheet = "Campaigns"
)

var (
	stakingHeader = []any{
		"Platform", "Coin", "Symbol", "APY (%)", "Lockup (days)",
		"Minimum", "Features", "Fees", "Day Change", "Rating", "Last Updated",
	}
	campaignHeader = []any{
		"Platform", "Name", "Description", "Expiry", "Requirements", "Reward", "Last Updated",
	}
)

// Workbook builds an xlsx workbook with a Staking and a Campaigns sheet
// holding every row of every snapshot. The caller closes the file.
func Workbook(snapshots []rewards.ExchangeSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	err := f.SetSheetName(f.GetSheetName(0), StakingSheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	_, err = f.NewSheet(CampaignsSheet)
	if err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	stakingRows := [][]any{stakingHeader}
	campaignRows := [][]any{campaignHeader}
	for _, s := range snapshots {
		for _, o := range s.StakingOffers {
			apy, err := rewards.RateValue(o.APY)
			if err != nil {
				apy = 0
			}
			stakingRows = append(stakingRows, []any{
				s.Platform,
				o.Coin,
				o.Symbol,
				apy,
				o.LockupDays,
				o.MinStaking,
				strings.Join(o.Features, ", "),
				o.Fees,
				o.DayChange,
				o.Rating,
				o.LastUpdated.Format("2006-01-02 15:04:05"),
			})
		}
		for _, c := range s.Campaigns {
			campaignRows = append(campaignRows, []any{
				s.Platform,
				c.Name,
				c.Description,
				c.ExpiryDate,
				strings.Join(c.Requirements, ", "),
				c.Reward,
				c.LastUpdated.Format("2006-01-02 15:04:05"),
			})
		}
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{name: StakingSheet, rows: stakingRows},
		{name: CampaignsSheet, rows: campaignRows},
	} {
		err = writeRows(f, sheet.name, sheet.rows, bold)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", sheet.name, err)
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		err = f.SetSheetRow(sheet, cell, &row)
		if err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	err = f.SetCellStyle(sheet, "A1", last+"1", headerStyle)
	if err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteWorkbook builds the workbook and saves it to path.
func WriteWorkbook(path string, snapshots []rewards.ExchangeSnapshot) error {
	f, err := Workbook(snapshots)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
