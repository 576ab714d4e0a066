package postgres

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/daxreyes/bushfire-beacon/internal/storage"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// buildSelect renders an ascending keyset selection. Column names are
// interpolated into the statement, so every one must match identPattern;
// values always travel as bound parameters.
func buildSelect(columns, table string, q storage.Query) (string, []interface{}, error) {
	var sb strings.Builder
	args := make([]interface{}, 0, 2)

	fmt.Fprintf(&sb, "SELECT %s FROM %s", columns, table)

	if q.Where != nil {
		if !identPattern.MatchString(q.Where.Field) {
			return "", nil, fmt.Errorf("%w: %q", storage.ErrUnsortableField, q.Where.Field)
		}
		args = append(args, q.Where.Value)
		fmt.Fprintf(&sb, " WHERE %s >= $%d", q.Where.Field, len(args))
	}

	if len(q.OrderBy) > 0 {
		ordered := make([]string, 0, len(q.OrderBy))
		for _, column := range q.OrderBy {
			if !identPattern.MatchString(column) {
				return "", nil, fmt.Errorf("%w: %q", storage.ErrUnsortableField, column)
			}
			ordered = append(ordered, column+" ASC")
		}
		sb.WriteString(" ORDER BY " + strings.Join(ordered, ", "))
	}

	args = append(args, q.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	return sb.String(), args, nil
}
