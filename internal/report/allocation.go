package report

import (
	"context"
	"errors"
	"fmt"

	"tempo/internal/core"
)

// ErrInvalidRange is returned when a requested range has start after end.
// The range is rejected before any data access happens.
var ErrInvalidRange = errors.New("invalid range: start date after end date")

// NoDataProject is the placeholder project name emitted when a user has no
// effective hours in the requested range.
const NoDataProject = "No data"

// Allocation is one project's share of a user's total effective hours.
type Allocation struct {
	Project string  `json:"project"`
	Percent float64 `json:"percent"`
}

// RangeFetcher loads the joined entry rows for one user inside an inclusive
// date range. The storage layer implements it; tests use fakes.
type RangeFetcher interface {
	FetchEntriesInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.EntryRow, error)
}

// ComputeAllocation groups a user's entries in [start, end] by project and
// returns each project's percentage of the total effective hours. Projects
// appear in first-seen order. A zero total yields the single NoDataProject
// slice at 100 percent rather than an error.
func ComputeAllocation(ctx context.Context, fetcher RangeFetcher, userID int64, start, end core.Date) ([]Allocation, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	rows, err := fetcher.FetchEntriesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch entries in range: %w", err)
	}

	var (
		order  []string
		totals = make(map[string]float64)
		total  float64
	)
	for _, row := range rows {
		hours := row.EffectiveHours()
		if _, seen := totals[row.Project]; !seen {
			order = append(order, row.Project)
		}
		totals[row.Project] += hours
		total += hours
	}

	if total == 0 {
		return []Allocation{{Project: NoDataProject, Percent: 100}}, nil
	}

	allocations := make([]Allocation, 0, len(order))
	for _, project := range order {
		allocations = append(allocations, Allocation{
			Project: project,
			Percent: totals[project] / total * 100,
		})
	}
	return allocations, nil
}
