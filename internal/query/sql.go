package query

import (
	"fmt"
	"strings"
)

// Columns maps criteria field names to SQL column expressions.
type Columns map[string]string

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Where renders the criteria as a WHERE clause with positional parameters
// starting at firstArg. It returns an empty clause when no known field is
// present. The next free parameter index is len(args)+firstArg.
func (c Criteria) Where(cols Columns, firstArg int) (string, []any) {
	clauses := []string{}
	args := []any{}
	argn := firstArg

	for _, cond := range c {
		col, ok := cols[cond.Field]
		if !ok {
			continue
		}
		switch cond.Op {
		case Contains:
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", col, argn))
			args = append(args, "%"+likeEscaper.Replace(text(cond.Value))+"%")
		case Equals:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, argn))
			args = append(args, cond.Value)
		default:
			continue
		}
		argn++
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// OrderBy renders the order as an ORDER BY clause. Unknown fields are
// skipped; with nothing known it returns an empty clause.
func (o Order) OrderBy(cols Columns) string {
	parts := []string{}
	if col, ok := cols[o.Field]; ok {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if col, ok := cols[o.TieBreak]; ok && o.TieBreak != o.Field {
		parts = append(parts, col+" ASC")
	}
	if len(parts) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}
