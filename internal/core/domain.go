package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar day, normalized to midnight UTC.
	Date struct {
		time.Time
	}

	// Overtime is an optional number of extra hours. Absent overtime is
	// semantically zero everywhere hours are aggregated.
	Overtime struct {
		Hours float64
		Valid bool
	}

	// Entry is a single timesheet record, owned by exactly one user.
	Entry struct {
		ID          int64
		UserID      int64
		ProjectID   int64
		TaskID      int64
		Activity    string
		Hours       float64
		Overtime    Overtime
		Description string
		Date        Date
	}

	// EntryRow is an entry joined to its project and task names, the shape
	// range and week fetches return.
	EntryRow struct {
		Project  string
		Task     string
		Activity string
		Hours    float64
		Overtime Overtime
		Date     Date
	}

	// Project and Task are static reference data; entries point at them by id.
	Project struct {
		ID   int64
		Name string
	}

	Task struct {
		ID        int64
		ProjectID int64
		Name      string
	}

	User struct {
		ID           int64
		Username     string
		FirstName    string
		LastName     string
		ContactNo    string
		Email        string
		PasswordHash string
	}
)

var (
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrInvalidHours    = errors.New("hours must be >= 0")
	ErrInvalidOvertime = errors.New("overtime must be >= 0")
	ErrMissingProject  = errors.New("missing project reference")
	ErrMissingTask     = errors.New("missing task reference")
	ErrMissingUser     = errors.New("missing user reference")
	ErrEmptyUsername   = errors.New("empty username")
	ErrEmptyPassword   = errors.New("empty password hash")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// Equal reports whether d and other are the same calendar day.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekStart returns the Monday of the ISO week containing d. Monday maps to
// day index 0 and Sunday to 6; Go's time.Weekday starts the week on Sunday,
// hence the +6 shift.
func WeekStart(d Date) Date {
	dayIndex := (int(d.Time.Weekday()) + 6) % 7
	return d.AddDays(-dayIndex)
}

// SomeOvertime wraps a present overtime value.
func SomeOvertime(hours float64) Overtime {
	return Overtime{Hours: hours, Valid: true}
}

// NoOvertime is the absent overtime value.
func NoOvertime() Overtime {
	return Overtime{}
}

// OrZero collapses absent overtime to zero.
func (o Overtime) OrZero() float64 {
	if !o.Valid {
		return 0
	}
	return o.Hours
}

func (o Overtime) Validate() error {
	if o.Valid && o.Hours < 0 {
		return ErrInvalidOvertime
	}
	return nil
}

// EffectiveHours is hours plus overtime, treating absent overtime as zero.
func (e Entry) EffectiveHours() float64 {
	return e.Hours + e.Overtime.OrZero()
}

// EffectiveHours is hours plus overtime for a joined row.
func (r EntryRow) EffectiveHours() float64 {
	return r.Hours + r.Overtime.OrZero()
}

func (e Entry) Validate() error {
	if e.UserID <= 0 {
		return ErrMissingUser
	}
	if e.ProjectID <= 0 {
		return ErrMissingProject
	}
	if e.TaskID <= 0 {
		return ErrMissingTask
	}
	if e.Hours < 0 {
		return ErrInvalidHours
	}
	if err := e.Overtime.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(e.Activity) > 200 {
		return errors.New("activity too long (max 200 characters)")
	}
	if len(e.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (u User) Validate() error {
	if len(strings.TrimSpace(u.Username)) == 0 {
		return ErrEmptyUsername
	}
	if len(u.Username) > 100 {
		return errors.New("username too long (max 100 characters)")
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	return nil
}
