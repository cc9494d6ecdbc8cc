package query

import (
	"fmt"
	"strings"
)

// Statement is a compiled predicate for the tasks table aliased as "t".
// Placeholders are numbered from $1; NextArg is the next free index.
type Statement struct {
	Where   string
	OrderBy string
	Args    []any
}

func (s Statement) NextArg() int {
	return len(s.Args) + 1
}

// Compile renders p as a PostgreSQL WHERE and ORDER BY clause. p must be
// normalized.
func Compile(p Params) Statement {
	var (
		conds []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case p.Scope.Unrestricted():
	case p.Scope.CallerID() != "":
		ph := bind(p.Scope.CallerID())
		conds = append(conds, fmt.Sprintf("(t.assigned_by = %s OR t.assigned_to = %s)", ph, ph))
	default:
		conds = append(conds, "FALSE")
	}

	if p.Filter.hasText() {
		var ors []string
		for _, f := range []struct {
			column string
			value  string
		}{
			{"t.title", p.Filter.Title},
			{"t.description", p.Filter.Description},
			{"t.status", p.Filter.Status},
		} {
			if f.value == "" {
				continue
			}
			ors = append(ors, fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, f.column, bind(LikePattern(f.value))))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if p.Filter.Priority != 0 {
		conds = append(conds, "t.priority = "+bind(int(p.Filter.Priority)))
	}

	where := "TRUE"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}

	column := "t.priority"
	if p.Sort.Field == SortByDueDate {
		column = "t.due_date"
	}
	dir := "DESC"
	if p.Sort.Direction == Ascending {
		dir = "ASC"
	}

	return Statement{
		Where:   where,
		OrderBy: fmt.Sprintf("%s %s, t.created_at ASC, t.id ASC", column, dir),
		Args:    args,
	}
}

// LikePattern wraps fragment for a substring match, escaping LIKE wildcards.
func LikePattern(fragment string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(fragment) + "%"
}
