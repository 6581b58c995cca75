package catalog

// The catalog represents queries as data, not query text: a Spec is a
// backend-neutral description (projections, conjunctive clauses of
// disjunctive conditions, grouping, ordering, limit) that the store compiles
// into its own dialect.

// Op identifies a row-level condition operator.
type Op int

const (
	// OpEqualFold matches the column case-insensitively against one value.
	OpEqualFold Op = iota
	// OpNotNull matches rows where the column carries a value.
	OpNotNull
	// OpContainsAny matches rows whose column contains any of the given
	// substrings, case-insensitively.
	OpContainsAny
)

// Condition is a single row-level predicate.
type Condition struct {
	Column string
	Op     Op
	Values []string
}

// Clause is a disjunction of conditions. A Spec's Where clauses are
// conjoined: every clause must hold, any condition within a clause may.
type Clause []Condition

// Agg identifies the expression applied to a projection.
type Agg int

const (
	AggNone     Agg = iota // bare column
	AggCountAll            // row count
	AggCountCol            // non-null count of a column
	AggSum
	AggAvg    // mean, computed over reals
	AggMax
	AggMin
	AggCountIf // count of rows matching the If clause (non-exclusive)
	AggDay     // calendar-day bucket of a timestamp column
	AggLabel   // column value with a fixed fallback label for nulls
)

// Column is one projection of a query.
type Column struct {
	Name     string // source column; empty for AggCountAll and AggCountIf
	Agg      Agg
	Alias    string
	Round    int    // decimal places for AggAvg, 0 = unrounded
	If       Clause // predicate for AggCountIf
	Fallback string // null substitution for AggLabel
}

// Order is one ordering key. Keys may reference projection aliases.
type Order struct {
	Column string
	Desc   bool
}

// Spec is the declarative description of one catalog query.
type Spec struct {
	Name    string
	Title   string
	Select  []Column // empty selects every column
	Where   []Clause
	GroupBy []string // column names or projection aliases
	OrderBy []Order
	Limit   int // 0 = all rows
}

// RequiredColumns returns every source column the spec reads. The engine
// checks these against the loaded schema before execution so an incomplete
// source degrades to a per-query failure instead of a driver error.
func (s Spec) RequiredColumns() []string {
	seen := map[string]bool{}
	var cols []string

	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	addClause := func(c Clause) {
		for _, cond := range c {
			add(cond.Column)
		}
	}

	aliases := map[string]bool{}
	for _, col := range s.Select {
		add(col.Name)
		addClause(col.If)
		if col.Alias != "" {
			aliases[col.Alias] = true
		}
	}
	for _, clause := range s.Where {
		addClause(clause)
	}
	for _, g := range s.GroupBy {
		if !aliases[g] {
			add(g)
		}
	}
	for _, o := range s.OrderBy {
		if !aliases[o.Column] {
			add(o.Column)
		}
	}

	return cols
}
