package catalog

import (
	"fmt"
	"strings"
)

// SQL compiles the spec into a single SELECT over the given table, in
// SQLite dialect. Specs are static trusted data, so literals are embedded
// rather than bound.
func (s Spec) SQL(table string) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(s.selectList())
	b.WriteString(" FROM ")
	b.WriteString(quoteIdent(table))

	if len(s.Where) > 0 {
		b.WriteString(" WHERE ")
		parts := make([]string, len(s.Where))
		for i, clause := range s.Where {
			parts[i] = renderClause(clause, len(s.Where) > 1)
		}
		b.WriteString(strings.Join(parts, " AND "))
	}

	if len(s.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(quoteAll(s.GroupBy), ", "))
	}

	if len(s.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		keys := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			keys[i] = quoteIdent(o.Column)
			if o.Desc {
				keys[i] += " DESC"
			}
		}
		b.WriteString(strings.Join(keys, ", "))
	}

	if s.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", s.Limit)
	}

	return b.String()
}

func (s Spec) selectList() string {
	if len(s.Select) == 0 {
		return "*"
	}
	parts := make([]string, len(s.Select))
	for i, col := range s.Select {
		parts[i] = renderColumn(col)
	}
	return strings.Join(parts, ", ")
}

func renderColumn(col Column) string {
	var expr string

	switch col.Agg {
	case AggNone:
		expr = quoteIdent(col.Name)
	case AggCountAll:
		expr = "COUNT(*)"
	case AggCountCol:
		expr = fmt.Sprintf("COUNT(%s)", quoteIdent(col.Name))
	case AggSum:
		expr = fmt.Sprintf("SUM(%s)", quoteIdent(col.Name))
	case AggAvg:
		expr = fmt.Sprintf("AVG(CAST(%s AS REAL))", quoteIdent(col.Name))
		if col.Round > 0 {
			expr = fmt.Sprintf("ROUND(%s, %d)", expr, col.Round)
		}
	case AggMax:
		expr = fmt.Sprintf("MAX(%s)", quoteIdent(col.Name))
	case AggMin:
		expr = fmt.Sprintf("MIN(%s)", quoteIdent(col.Name))
	case AggCountIf:
		expr = fmt.Sprintf("SUM(CASE WHEN %s THEN 1 ELSE 0 END)", renderClause(col.If, false))
	case AggDay:
		expr = fmt.Sprintf("date(%s)", quoteIdent(col.Name))
	case AggLabel:
		expr = fmt.Sprintf("COALESCE(%s, %s)", quoteIdent(col.Name), quoteString(col.Fallback))
	}

	if col.Alias != "" {
		expr += " AS " + quoteIdent(col.Alias)
	}
	return expr
}

// renderClause joins a clause's conditions with OR, parenthesized whenever
// the result sits next to other SQL.
func renderClause(clause Clause, wrap bool) string {
	parts := make([]string, 0, len(clause))
	for _, cond := range clause {
		parts = append(parts, renderCondition(cond))
	}
	joined := strings.Join(parts, " OR ")
	if wrap && len(parts) > 1 {
		return "(" + joined + ")"
	}
	return joined
}

func renderCondition(cond Condition) string {
	col := quoteIdent(cond.Column)

	switch cond.Op {
	case OpEqualFold:
		value := ""
		if len(cond.Values) > 0 {
			value = strings.ToLower(cond.Values[0])
		}
		return fmt.Sprintf("LOWER(%s) = %s", col, quoteString(value))
	case OpNotNull:
		return fmt.Sprintf("%s IS NOT NULL", col)
	case OpContainsAny:
		parts := make([]string, len(cond.Values))
		for i, v := range cond.Values {
			parts[i] = fmt.Sprintf("LOWER(%s) LIKE %s", col, quoteString("%"+strings.ToLower(v)+"%"))
		}
		if len(parts) > 1 {
			return "(" + strings.Join(parts, " OR ") + ")"
		}
		return strings.Join(parts, " OR ")
	}

	return "1=1"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return quoted
}
