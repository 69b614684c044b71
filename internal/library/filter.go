package library

import "fmt"

// Filter selects which books or loans a list page shows.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCheckedOut Filter = "checked_out"
	FilterOverdue    Filter = "overdue"
)

// ParseFilter reads the filter query parameter. An empty value means all;
// anything unrecognised is ErrNotFound.
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterCheckedOut:
		return FilterCheckedOut, nil
	case FilterOverdue:
		return FilterOverdue, nil
	}
	return "", fmt.Errorf("filter %q: %w", raw, ErrNotFound)
}

// Label is the heading shown above a filtered list.
func (f Filter) Label() string {
	switch f {
	case FilterCheckedOut:
		return "Checked Out"
	case FilterOverdue:
		return "Overdue"
	default:
		return "All"
	}
}

// Filters lists every filter in menu order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterCheckedOut, FilterOverdue}
}
