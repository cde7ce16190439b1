package report

import (
	"context"
	"errors"
	"math"
	"testing"

	"tempo/internal/core"
)

type fakeFetcher struct {
	rows    []core.EntryRow
	err     error
	fetched bool
}

func (f *fakeFetcher) FetchEntriesInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.EntryRow, error) {
	f.fetched = true
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeFetcher) FetchEntriesInWeek(ctx context.Context, userID int64, weekStart core.Date) ([]core.EntryRow, error) {
	f.fetched = true
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func day(d int) core.Date { return core.NewDate(2026, 1, d) }

func TestComputeAllocationSplitsByProject(t *testing.T) {
	fetcher := &fakeFetcher{rows: []core.EntryRow{
		{Project: "Alpha", Hours: 10, Overtime: core.SomeOvertime(2), Date: day(5)},
		{Project: "Beta", Hours: 8, Date: day(6)},
	}}

	got, err := ComputeAllocation(context.Background(), fetcher, 1, day(1), day(31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(got))
	}
	if got[0].Project != "Alpha" || got[0].Percent != 60 {
		t.Fatalf("Alpha share: got %+v, want 60%%", got[0])
	}
	if got[1].Project != "Beta" || got[1].Percent != 40 {
		t.Fatalf("Beta share: got %+v, want 40%%", got[1])
	}
}

func TestComputeAllocationPercentagesSumTo100(t *testing.T) {
	fetcher := &fakeFetcher{rows: []core.EntryRow{
		{Project: "Alpha", Hours: 7.25, Date: day(5)},
		{Project: "Beta", Hours: 3.5, Overtime: core.SomeOvertime(1.75), Date: day(5)},
		{Project: "Gamma", Hours: 0.1, Date: day(6)},
		{Project: "Alpha", Hours: 4, Date: day(7)},
	}}

	got, err := ComputeAllocation(context.Background(), fetcher, 1, day(1), day(31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	var sum float64
	for _, a := range got {
		sum += a.Percent
	}
	if math.Abs(sum-100) > 1e-6 {
		t.Fatalf("percentages sum to %v, want 100", sum)
	}
}

func TestComputeAllocationEmptyRange(t *testing.T) {
	fetcher := &fakeFetcher{}

	got, err := ComputeAllocation(context.Background(), fetcher, 1, day(1), day(31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(got) != 1 || got[0].Project != NoDataProject || got[0].Percent != 100 {
		t.Fatalf("expected the no-data placeholder, got %+v", got)
	}
}

func TestComputeAllocationAllZeroHours(t *testing.T) {
	fetcher := &fakeFetcher{rows: []core.EntryRow{
		{Project: "Alpha", Hours: 0, Date: day(5)},
		{Project: "Beta", Hours: 0, Date: day(6)},
	}}

	got, err := ComputeAllocation(context.Background(), fetcher, 1, day(1), day(31))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(got) != 1 || got[0].Project != NoDataProject {
		t.Fatalf("zero totals should collapse to the placeholder, got %+v", got)
	}
}

func TestComputeAllocationInvalidRange(t *testing.T) {
	fetcher := &fakeFetcher{}

	_, err := ComputeAllocation(context.Background(), fetcher, 1, day(31), day(1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
	if fetcher.fetched {
		t.Fatalf("invalid range must be rejected before fetching")
	}
}

func TestComputeAllocationFetchFailure(t *testing.T) {
	cause := errors.New("disk on fire")
	fetcher := &fakeFetcher{err: cause}

	got, err := ComputeAllocation(context.Background(), fetcher, 1, day(1), day(31))
	if !errors.Is(err, cause) {
		t.Fatalf("fetch error not propagated: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %+v", got)
	}
}
