package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTasks returns tasks created one second apart in the given order.
func sampleTasks(t *testing.T, titles ...string) []*Task {
	t.Helper()
	owner := uuid.New()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tasks := make([]*Task, 0, len(titles))
	for i, title := range titles {
		task, err := NewTask(owner, title)
		require.NoError(t, err)
		task.CreatedAt = base.Add(time.Duration(i) * time.Second)
		task.UpdatedAt = task.CreatedAt
		tasks = append(tasks, task)
	}
	return tasks
}

func titles(tasks []*Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestTaskQueryApplyNotebookExample(t *testing.T) {
	tasks := sampleTasks(t,
		"Check if the notebook is broken",
		"Buy a new notebook",
		"Hold the door",
		"Buy a new car",
	)

	query := TaskQuery{
		Filters: []TaskFilter{{Field: TaskFieldTitle, Op: FilterContains, Value: "note"}},
		Sorts:   []TaskSort{{Field: TaskFieldTitle, Direction: SortAsc}},
	}

	assert.Equal(t,
		[]string{"Buy a new notebook", "Check if the notebook is broken"},
		titles(query.Apply(tasks)))
}

func TestTaskQueryApplyEmptyQueryKeepsCreationOrder(t *testing.T) {
	tasks := sampleTasks(t, "b", "a", "c")
	shuffled := []*Task{tasks[2], tasks[0], tasks[1]}

	got := TaskQuery{}.Apply(shuffled)

	assert.Equal(t, []string{"b", "a", "c"}, titles(got))
	assert.Equal(t, "c", shuffled[0].Title, "input slice must not be reordered")
}

func TestTaskQueryApplySameTimestampFallsBackToID(t *testing.T) {
	tasks := sampleTasks(t, "first", "second", "third")
	for _, task := range tasks {
		task.CreatedAt = tasks[0].CreatedAt
	}

	got := TaskQuery{}.Apply([]*Task{tasks[2], tasks[1], tasks[0]})

	assert.Equal(t, []string{"first", "second", "third"}, titles(got))
}

func TestTaskQueryFilters(t *testing.T) {
	tasks := sampleTasks(t, "Notebook", "notebook", "Buy a notebook")

	tests := []struct {
		name    string
		filters []TaskFilter
		want    []string
	}{
		{
			name:    "contains is case sensitive",
			filters: []TaskFilter{{Field: TaskFieldTitle, Op: FilterContains, Value: "note"}},
			want:    []string{"notebook", "Buy a notebook"},
		},
		{
			name:    "equals",
			filters: []TaskFilter{{Field: TaskFieldTitle, Op: FilterEquals, Value: "Notebook"}},
			want:    []string{"Notebook"},
		},
		{
			name: "filters are ANDed",
			filters: []TaskFilter{
				{Field: TaskFieldTitle, Op: FilterContains, Value: "note"},
				{Field: TaskFieldTitle, Op: FilterContains, Value: "Buy"},
			},
			want: []string{"Buy a notebook"},
		},
		{
			name:    "no match",
			filters: []TaskFilter{{Field: TaskFieldTitle, Op: FilterContains, Value: "door"}},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaskQuery{Filters: tt.filters}.Apply(tasks)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestTaskQuerySorts(t *testing.T) {
	tasks := sampleTasks(t, "b", "a", "b", "c")
	tasks[3].UpdatedAt = tasks[0].UpdatedAt.Add(-time.Hour)

	t.Run("title desc with creation tie-break", func(t *testing.T) {
		q := TaskQuery{Sorts: []TaskSort{{Field: TaskFieldTitle, Direction: SortDesc}}}
		got := q.Apply(tasks)
		assert.Equal(t, []string{"c", "b", "b", "a"}, titles(got))
		assert.Same(t, tasks[0], got[1], "equal titles keep creation order")
	})

	t.Run("multi key", func(t *testing.T) {
		q := TaskQuery{Sorts: []TaskSort{
			{Field: TaskFieldTitle, Direction: SortAsc},
			{Field: TaskFieldCreatedAt, Direction: SortDesc},
		}}
		got := q.Apply(tasks)
		assert.Equal(t, []*Task{tasks[1], tasks[2], tasks[0], tasks[3]}, got)
	})

	t.Run("updated_at asc", func(t *testing.T) {
		q := TaskQuery{Sorts: []TaskSort{{Field: TaskFieldUpdatedAt, Direction: SortAsc}}}
		got := q.Apply(tasks)
		assert.Same(t, tasks[3], got[0])
	})
}

func TestParseHelpers(t *testing.T) {
	f, ok := ParseTaskField("title")
	assert.True(t, ok)
	assert.True(t, f.Filterable())

	f, ok = ParseTaskField("created_at")
	assert.True(t, ok)
	assert.False(t, f.Filterable())

	_, ok = ParseTaskField("user_id")
	assert.False(t, ok)

	op, ok := ParseFilterOp("cont")
	assert.True(t, ok)
	assert.Equal(t, FilterContains, op)

	_, ok = ParseFilterOp("start")
	assert.False(t, ok)

	dir, ok := ParseSortDirection("asc")
	assert.True(t, ok)
	assert.Equal(t, SortAsc, dir)

	dir, ok = ParseSortDirection("DeSc")
	assert.True(t, ok)
	assert.Equal(t, SortDesc, dir)

	_, ok = ParseSortDirection("sideways")
	assert.False(t, ok)
}
