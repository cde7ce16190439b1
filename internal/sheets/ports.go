package sheets

import (
	"context"

	"tempo/internal/core"
)

// Entry is the row shape the mirror receives: names resolved, ready to write.
type Entry struct {
	Date        core.Date
	Project     string
	Task        string
	Activity    string
	Hours       float64
	Overtime    core.Overtime
	Description string
}

// EntryAppender is the outbound port for the timesheet mirror.
type EntryAppender interface {
	AppendEntry(ctx context.Context, e Entry) (rowRef string, err error)
}
