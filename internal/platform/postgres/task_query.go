package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

const taskColumns = `id, user_id, title, created_at, updated_at`

// taskSortColumns whitelists the SQL expression for each sortable field.
// Titles compare byte-wise so ordering matches the in-memory evaluator.
var taskSortColumns = map[domain.TaskField]string{
	domain.TaskFieldTitle:     `title COLLATE "C"`,
	domain.TaskFieldCreatedAt: `created_at`,
	domain.TaskFieldUpdatedAt: `updated_at`,
}

// buildTaskListQuery renders a TaskQuery into SQL scoped to userID.
// Only whitelisted column expressions are interpolated; values are always
// passed as positional arguments.
func buildTaskListQuery(userID uuid.UUID, q domain.TaskQuery) (string, []any, error) {
	var sb strings.Builder
	args := []any{userID}

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)

	for _, f := range q.Filters {
		if !f.Field.Filterable() {
			return "", nil, fmt.Errorf("field %q cannot be filtered", f.Field)
		}
		args = append(args, f.Value)
		switch f.Op {
		case domain.FilterContains:
			// strpos is case-sensitive and needs no LIKE escaping.
			fmt.Fprintf(&sb, ` AND strpos(title, $%d) > 0`, len(args))
		case domain.FilterEquals:
			fmt.Fprintf(&sb, ` AND title = $%d`, len(args))
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}

	sb.WriteString(` ORDER BY `)
	for _, s := range q.Sorts {
		col, ok := taskSortColumns[s.Field]
		if !ok {
			return "", nil, fmt.Errorf("field %q cannot be sorted", s.Field)
		}
		dir := "ASC"
		if s.Direction == domain.SortDesc {
			dir = "DESC"
		}
		sb.WriteString(col + " " + dir + ", ")
	}
	sb.WriteString(`created_at ASC, id ASC`)

	return sb.String(), args, nil
}
