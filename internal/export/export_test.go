package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"tempo/internal/core"
	"tempo/internal/report"

	"github.com/xuri/excelize/v2"
)

func sampleWeek() report.Week {
	return report.Week{
		Start: core.NewDate(2026, 1, 5),
		Rows: []report.WeekRow{
			{
				Project:   "Website Redesign",
				Task:      "Design",
				Activity:  "wireframes",
				Hours:     8,
				Effective: 8,
				Date:      core.NewDate(2026, 1, 5),
			},
			{
				Project:   "Mobile App",
				Task:      "Testing",
				Hours:     6,
				Overtime:  core.SomeOvertime(2),
				Effective: 8,
				Date:      core.NewDate(2026, 1, 6),
			},
		},
	}
}

func TestWriteWeeklyCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWeeklyCSV(&buf, sampleWeek()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "Date" || records[0][6] != "Effective Hours" {
		t.Fatalf("header: %v", records[0])
	}
	if records[1][0] != "2026-01-05" || records[1][1] != "Website Redesign" {
		t.Fatalf("first row: %v", records[1])
	}
	if records[1][5] != "" {
		t.Fatalf("absent overtime should render empty, got %q", records[1][5])
	}
	if records[2][5] != "2" || records[2][6] != "8" {
		t.Fatalf("second row overtime/effective: %v", records[2])
	}
}

func TestWriteWeeklyExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWeeklyExcel(&buf, sampleWeek()); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if !strings.Contains(sheet, "2026-01-05") {
		t.Fatalf("sheet name should carry the week start, got %q", sheet)
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	// header + 2 entries + total
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Fatalf("header: %v", rows[0])
	}
	if rows[1][1] != "Website Redesign" {
		t.Fatalf("first entry: %v", rows[1])
	}
	if rows[3][0] != "Total" {
		t.Fatalf("total label: %v", rows[3])
	}
}

func TestWriteWeeklyCSVEmptyWeek(t *testing.T) {
	var buf bytes.Buffer
	week := report.Week{Start: core.NewDate(2026, 1, 5)}
	if err := WriteWeeklyCSV(&buf, week); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("empty week should be header only, got %d rows", len(records))
	}
}
