package reminder

import (
	"fmt"
	"strings"
)

// Sort is a "<field>,<asc|desc>" ordering as understood by the service.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort orders by due date, soonest first.
var DefaultSort = Sort{Field: "dueDate"}

// ParseSort parses "field" or "field,asc|desc".
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSort, nil
	}
	field, dir, _ := strings.Cut(s, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		return Sort{}, fmt.Errorf("invalid sort %q: missing field", s)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return Sort{Field: field}, nil
	case "desc":
		return Sort{Field: field, Desc: true}, nil
	}
	return Sort{}, fmt.Errorf("invalid sort %q: direction must be asc or desc", s)
}

func (s Sort) String() string {
	if s.Field == "" {
		return DefaultSort.String()
	}
	if s.Desc {
		return s.Field + ",desc"
	}
	return s.Field + ",asc"
}

// Query describes one listing request. Page is 1-based. Priority "" and
// Completed nil mean "no filter".
type Query struct {
	Page      int
	PageSize  int
	Sort      Sort
	Title     string
	Priority  Priority
	Completed *bool
}

// CompletedFilter returns a pointer for Query.Completed.
func CompletedFilter(v bool) *bool {
	return &v
}

// Equal reports whether q and o describe the same request.
func (q Query) Equal(o Query) bool {
	if q.Page != o.Page || q.PageSize != o.PageSize || q.Sort != o.Sort ||
		q.Title != o.Title || q.Priority != o.Priority {
		return false
	}
	if q.Completed == nil || o.Completed == nil {
		return q.Completed == o.Completed
	}
	return *q.Completed == *o.Completed
}
