package storage

// SortColumn is the closed set of columns entry listings may be ordered by.
// Order clauses are selected from this enumeration, never built from request
// input.
type SortColumn int

const (
	SortByDate SortColumn = iota
	SortByProject
	SortByHours
)

// ParseSortColumn maps a request parameter to a SortColumn. Unknown values
// fall back to the date ordering.
func ParseSortColumn(s string) SortColumn {
	switch s {
	case "project":
		return SortByProject
	case "hours":
		return SortByHours
	default:
		return SortByDate
	}
}

func (c SortColumn) orderClause() string {
	switch c {
	case SortByProject:
		return "p.name, e.entry_date DESC"
	case SortByHours:
		return "e.hours DESC, e.entry_date DESC"
	default:
		return "e.entry_date DESC, e.id DESC"
	}
}

func (c SortColumn) String() string {
	switch c {
	case SortByProject:
		return "project"
	case SortByHours:
		return "hours"
	default:
		return "date"
	}
}
