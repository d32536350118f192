package domain

import (
	"bytes"
	"sort"
	"strings"
)

// TaskField names a task attribute that can be filtered or sorted on.
type TaskField string

// Queryable task fields.
const (
	TaskFieldTitle     TaskField = "title"
	TaskFieldCreatedAt TaskField = "created_at"
	TaskFieldUpdatedAt TaskField = "updated_at"
)

// ParseTaskField returns the field for name, or false if it is not queryable.
func ParseTaskField(name string) (TaskField, bool) {
	switch f := TaskField(name); f {
	case TaskFieldTitle, TaskFieldCreatedAt, TaskFieldUpdatedAt:
		return f, true
	}
	return "", false
}

// Filterable reports whether predicates may be applied to the field.
// Only text fields accept filters.
func (f TaskField) Filterable() bool {
	return f == TaskFieldTitle
}

// FilterOp is a predicate kind.
type FilterOp string

// Supported predicates.
const (
	// FilterContains matches a case-sensitive substring.
	FilterContains FilterOp = "cont"
	// FilterEquals matches the exact value.
	FilterEquals FilterOp = "eq"
)

// ParseFilterOp returns the predicate for name, or false if unsupported.
func ParseFilterOp(name string) (FilterOp, bool) {
	switch op := FilterOp(name); op {
	case FilterContains, FilterEquals:
		return op, true
	}
	return "", false
}

// TaskFilter is one predicate over a task field.
type TaskFilter struct {
	Field TaskField
	Op    FilterOp
	Value string
}

// Matches evaluates the predicate against task.
func (f TaskFilter) Matches(task *Task) bool {
	if f.Field != TaskFieldTitle {
		return false
	}
	switch f.Op {
	case FilterContains:
		return strings.Contains(task.Title, f.Value)
	case FilterEquals:
		return task.Title == f.Value
	}
	return false
}

// SortDirection orders a sort key.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection accepts "asc" or "desc" in any case.
func ParseSortDirection(name string) (SortDirection, bool) {
	switch d := SortDirection(strings.ToUpper(name)); d {
	case SortAsc, SortDesc:
		return d, true
	}
	return "", false
}

// TaskSort is one ordering key.
type TaskSort struct {
	Field     TaskField
	Direction SortDirection
}

// TaskQuery is a validated listing request: all filters are ANDed and sorts
// apply in order. Ties, and the order of an unsorted query, fall back to
// creation order (CreatedAt, then ID).
type TaskQuery struct {
	Filters []TaskFilter
	Sorts   []TaskSort
}

// Matches reports whether task satisfies every filter.
func (q TaskQuery) Matches(task *Task) bool {
	for _, f := range q.Filters {
		if !f.Matches(task) {
			return false
		}
	}
	return true
}

// Less reports whether a sorts before b under the query's ordering.
func (q TaskQuery) Less(a, b *Task) bool {
	for _, s := range q.Sorts {
		c := compareField(a, b, s.Field)
		if c == 0 {
			continue
		}
		if s.Direction == SortDesc {
			return c > 0
		}
		return c < 0
	}

	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Apply filters and orders tasks without modifying the input slice.
func (q TaskQuery) Apply(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if q.Matches(t) {
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return q.Less(out[i], out[j])
	})
	return out
}

func compareField(a, b *Task, field TaskField) int {
	switch field {
	case TaskFieldTitle:
		return strings.Compare(a.Title, b.Title)
	case TaskFieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case TaskFieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}
