package memory

import (
	"context"
	"fmt"
	"sync"

	"tempo/internal/sheets"
)

// Appender is an in-memory sheets.EntryAppender for tests and local runs
// without a configured spreadsheet.
type Appender struct {
	mu   sync.Mutex
	rows []sheets.Entry
}

func New() *Appender {
	return &Appender{}
}

func (a *Appender) AppendEntry(ctx context.Context, e sheets.Entry) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rows = append(a.rows, e)
	return fmt.Sprintf("row-%d", len(a.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (a *Appender) Rows() []sheets.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]sheets.Entry, len(a.rows))
	copy(out, a.rows)
	return out
}
