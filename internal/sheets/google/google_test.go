package google

import "testing"

func TestYearPrefixedName(t *testing.T) {
	if got := yearPrefixedName("Timesheet", 2026); got != "2026 Timesheet" {
		t.Fatalf("got %q", got)
	}
	if got := yearPrefixedName("", 2026); got != "2026 Timesheet" {
		t.Fatalf("empty base should default to Timesheet, got %q", got)
	}
}
