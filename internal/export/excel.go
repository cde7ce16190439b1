package export

import (
	"fmt"
	"io"
	"strconv"

	"tempo/internal/report"

	"github.com/xuri/excelize/v2"
)

var weeklyHeaders = []string{"Date", "Project", "Task", "Activity", "Hours", "Overtime", "Effective Hours"}

// WriteWeeklyExcel renders a week as an .xlsx workbook with one sheet named
// after the week start, a header row, one row per entry and a totals row.
func WriteWeeklyExcel(w io.Writer, week report.Week) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := file.SetSheetName(sheet, "Week "+week.Start.String()); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sheet = "Week " + week.Start.String()

	for col, header := range weeklyHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, row := range week.Rows {
		values := []any{
			row.Date.String(),
			row.Project,
			row.Task,
			row.Activity,
			row.Hours,
			overtimeCell(row),
			row.Effective,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	totalRow := len(week.Rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := file.SetCellValue(sheet, labelCell, "Total"); err != nil {
		return fmt.Errorf("set total label: %w", err)
	}
	totalCell, _ := excelize.CoordinatesToCellName(len(weeklyHeaders), totalRow)
	if err := file.SetCellValue(sheet, totalCell, week.TotalHours()); err != nil {
		return fmt.Errorf("set total value: %w", err)
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}

	return nil
}

func overtimeCell(row report.WeekRow) any {
	if !row.Overtime.Valid {
		return ""
	}
	return row.Overtime.Hours
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
