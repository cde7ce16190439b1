package report

import (
	"context"
	"fmt"
	"sort"

	"tempo/internal/core"
)

// WeekRow is one entry annotated with its effective hours for weekly views.
// The JSON hours field carries the combined regular plus overtime value; the
// raw split stays available to templates and exports.
type WeekRow struct {
	Project   string        `json:"project"`
	Task      string        `json:"task"`
	Activity  string        `json:"activity"`
	Hours     float64       `json:"-"`
	Overtime  core.Overtime `json:"-"`
	Effective float64       `json:"hours"`
	Date      core.Date     `json:"date"`
}

// Week is a user's timesheet for one Monday-aligned week.
type Week struct {
	Start core.Date `json:"week_start"`
	Rows  []WeekRow `json:"rows"`
}

// TotalHours sums the effective hours of every row in the week.
func (w Week) TotalHours() float64 {
	var total float64
	for _, row := range w.Rows {
		total += row.Effective
	}
	return total
}

// WeekFetcher loads the joined entry rows for one user inside the half-open
// window [weekStart, weekStart+7d).
type WeekFetcher interface {
	FetchEntriesInWeek(ctx context.Context, userID int64, weekStart core.Date) ([]core.EntryRow, error)
}

// GroupWeek normalizes refDate to its Monday week start, fetches the seven-day
// window and returns the rows sorted ascending by date. Rows on the same day
// keep their fetch order.
func GroupWeek(ctx context.Context, fetcher WeekFetcher, userID int64, refDate core.Date) (Week, error) {
	weekStart := core.WeekStart(refDate)

	rows, err := fetcher.FetchEntriesInWeek(ctx, userID, weekStart)
	if err != nil {
		return Week{}, fmt.Errorf("fetch entries in week: %w", err)
	}

	week := Week{Start: weekStart, Rows: make([]WeekRow, 0, len(rows))}
	for _, row := range rows {
		week.Rows = append(week.Rows, WeekRow{
			Project:   row.Project,
			Task:      row.Task,
			Activity:  row.Activity,
			Hours:     row.Hours,
			Overtime:  row.Overtime,
			Effective: row.EffectiveHours(),
			Date:      row.Date,
		})
	}

	sort.SliceStable(week.Rows, func(i, j int) bool {
		return week.Rows[i].Date.Before(week.Rows[j].Date)
	})

	return week, nil
}
