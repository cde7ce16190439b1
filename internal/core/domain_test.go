package core

import "testing"

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-07")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year() != 2026 || int(d.Month()) != 1 || d.Day() != 7 {
		t.Fatalf("unexpected date: %v", d)
	}

	if _, err := ParseDate("07/01/2026"); err == nil {
		t.Fatalf("expected error for non-ISO format")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty string")
	}
}

func TestWeekStart(t *testing.T) {
	// 2026-01-05 is a Monday.
	monday := NewDate(2026, 1, 5)

	// Every day of that week maps back to the same Monday.
	for offset := 0; offset < 7; offset++ {
		day := monday.AddDays(offset)
		if got := WeekStart(day); !got.Equal(monday) {
			t.Fatalf("WeekStart(%s) = %s, want %s", day, got, monday)
		}
	}

	// The Wednesday from the reference scenario.
	if got := WeekStart(NewDate(2026, 1, 7)); !got.Equal(monday) {
		t.Fatalf("WeekStart(2026-01-07) = %s, want 2026-01-05", got)
	}

	// The next Monday starts a new week.
	next := NewDate(2026, 1, 12)
	if got := WeekStart(next); !got.Equal(next) {
		t.Fatalf("WeekStart(2026-01-12) = %s, want 2026-01-12", got)
	}
}

func TestOvertimeOrZero(t *testing.T) {
	if got := NoOvertime().OrZero(); got != 0 {
		t.Fatalf("absent overtime should be zero, got %v", got)
	}
	if got := SomeOvertime(2.5).OrZero(); got != 2.5 {
		t.Fatalf("present overtime lost: got %v", got)
	}
}

func TestEntryEffectiveHours(t *testing.T) {
	e := Entry{Hours: 8}
	if got := e.EffectiveHours(); got != 8 {
		t.Fatalf("effective hours without overtime: got %v, want 8", got)
	}

	e.Overtime = SomeOvertime(2)
	if got := e.EffectiveHours(); got != 10 {
		t.Fatalf("effective hours with overtime: got %v, want 10", got)
	}
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{
		UserID:    1,
		ProjectID: 2,
		TaskID:    3,
		Hours:     7.5,
		Date:      NewDate(2026, 1, 5),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Entry)
		want   error
	}{
		{"no user", func(e *Entry) { e.UserID = 0 }, ErrMissingUser},
		{"no project", func(e *Entry) { e.ProjectID = 0 }, ErrMissingProject},
		{"no task", func(e *Entry) { e.TaskID = 0 }, ErrMissingTask},
		{"negative hours", func(e *Entry) { e.Hours = -1 }, ErrInvalidHours},
		{"negative overtime", func(e *Entry) { e.Overtime = SomeOvertime(-0.5) }, ErrInvalidOvertime},
		{"zero date", func(e *Entry) { e.Date = Date{} }, ErrZeroDate},
	}
	for _, tc := range cases {
		e := valid
		tc.mutate(&e)
		if err := e.Validate(); err != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestUserValidate(t *testing.T) {
	u := User{Username: "mallory", PasswordHash: "x"}
	if err := u.Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	u.Username = "   "
	if err := u.Validate(); err != ErrEmptyUsername {
		t.Fatalf("blank username: got %v", err)
	}

	u = User{Username: "mallory"}
	if err := u.Validate(); err != ErrEmptyPassword {
		t.Fatalf("missing hash: got %v", err)
	}
}
