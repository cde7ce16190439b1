package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"tempo/internal/report"
)

// WriteWeeklyCSV renders a week as CSV with the same columns as the Excel
// export.
func WriteWeeklyCSV(w io.Writer, week report.Week) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(weeklyHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, row := range week.Rows {
		overtime := ""
		if row.Overtime.Valid {
			overtime = formatHours(row.Overtime.Hours)
		}
		record := []string{
			row.Date.String(),
			row.Project,
			row.Task,
			row.Activity,
			formatHours(row.Hours),
			overtime,
			formatHours(row.Effective),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
