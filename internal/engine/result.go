package engine

import "fmt"

// Result is the tabular output of one catalog query: named columns, ordered
// rows, and a row count.
type Result struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

// QueryError is the per-query failure surfaced when a catalog entry cannot
// run, typically because the loaded schema misses a column it references.
// It never aborts other queries.
type QueryError struct {
	Query  string
	Reason string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query %s failed: %s: %v", e.Query, e.Reason, e.Err)
	}
	return fmt.Sprintf("query %s failed: %s", e.Query, e.Reason)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
