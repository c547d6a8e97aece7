package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
)

const (
	contributionsSheet = "Contributions"
	summarySheet       = "Summary"
)

// WriteXLSX writes a workbook with one row per user and, when present, a summary sheet.
func WriteXLSX(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(contributionsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SetCellValue(contributionsSheet, "A1", "Range"); err != nil {
		return err
	}
	if err := f.SetCellValue(contributionsSheet, "B1", rep.Range.String()); err != nil {
		return err
	}
	for i, header := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(contributionsSheet, cell, header); err != nil {
			return err
		}
	}
	for r, u := range rep.Users {
		if err := setUserRow(f, r+4, u); err != nil {
			return fmt.Errorf("write row for %s: %w", u.Username, err)
		}
	}
	for i := range columns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(contributionsSheet, colName, colName, 18); err != nil {
			return err
		}
	}

	if rep.Summary != nil {
		if err := writeSummarySheet(f, rep); err != nil {
			return err
		}
	}

	index, err := f.GetSheetIndex(contributionsSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setUserRow(f *excelize.File, rowNum int, u domain.TrackedUser) error {
	values := []interface{}{u.Username}
	switch u.State() {
	case domain.StateStats:
		s := u.Stats
		values = append(values, s.Commits, s.Issues, s.PullRequests, s.PullRequestReviews, s.Repositories, "")
	case domain.StateError:
		values = append(values, nil, nil, nil, nil, nil, u.Error)
	default:
		values = append(values, nil, nil, nil, nil, nil, "not fetched")
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	return f.SetSheetRow(contributionsSheet, cell, &values)
}

func writeSummarySheet(f *excelize.File, rep Report) error {
	s := rep.Summary
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Users", s.Users},
		{"Fetched", s.Fetched},
		{"Failed", s.Failed},
		{"Unfetched", s.Unfetched},
		{},
		{"Counter", "Total", "Mean", "Median", "Max"},
	}
	for _, c := range counters(*s) {
		rows = append(rows, []interface{}{c.name, c.Total, c.Mean, c.Median, c.Max})
	}
	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "E", 16)
}
