package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rideinsights/backend/internal/catalog"
	"github.com/rideinsights/backend/internal/dataset"
	"github.com/rideinsights/backend/pkg/database"
	"github.com/rideinsights/backend/pkg/logger"
)

// TableName is the fixed identity of the canonical dataset in the store.
const TableName = "ola_rides"

// Column types in the store. Everything not listed is TEXT, including
// unrecognized pass-through columns.
var columnTypes = map[string]string{
	dataset.ColRideDistance:   "INTEGER",
	dataset.ColBookingValue:   "INTEGER",
	dataset.ColDriverRatings:  "REAL",
	dataset.ColCustomerRating: "REAL",
}

// Engine loads the canonical dataset into the backing store and executes
// catalog queries against it.
type Engine struct {
	db     *database.DB
	logger *logger.Logger

	loadedAt *time.Time
}

// New creates a new Engine on an open store
func New(db *database.DB, log *logger.Logger) *Engine {
	return &Engine{db: db, logger: log}
}

// Load replaces the store's contents with the given canonical table.
// Drop-then-recreate, deliberately not an atomic swap: a concurrent reader
// could observe the empty intermediate state, which the single-session
// model accepts.
func (e *Engine) Load(ctx context.Context, t *dataset.Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("load: table has no columns")
	}

	if _, err := e.db.Conn.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, TableName)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", TableName, err)
	}
	if _, err := e.db.Conn.ExecContext(ctx, createTableSQL(t.Columns)); err != nil {
		return fmt.Errorf("failed to create %s: %w", TableName, err)
	}

	// The inserts share one transaction for write speed; the replace as a
	// whole is still two visible steps.
	tx, err := e.db.Conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, insertSQL(t.Columns))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}

	args := make([]any, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			args[i] = storeValue(row[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inserts: %w", err)
	}

	now := time.Now()
	e.loadedAt = &now

	e.logger.WithFields(map[string]interface{}{
		"table": TableName,
		"rows":  t.NumRows(),
		"store": e.db.Path,
	}).Info("Canonical dataset loaded into store")

	return nil
}

// Run executes the named catalog query and returns its tabular result.
// Failures are isolated to this query via QueryError.
func (e *Engine) Run(ctx context.Context, name string) (*Result, error) {
	spec, ok := catalog.Lookup(name)
	if !ok {
		return nil, &QueryError{Query: name, Reason: "unknown query"}
	}

	// Verify the loaded schema covers every referenced column; the catalog
	// is static, so this only fires when the source schema was incomplete.
	available, err := e.tableColumns(ctx)
	if err != nil {
		return nil, &QueryError{Query: name, Reason: "store schema unreadable", Err: err}
	}
	for _, col := range spec.RequiredColumns() {
		if !available[col] {
			return nil, &QueryError{Query: name, Reason: fmt.Sprintf("column %s not in dataset", col)}
		}
	}

	query := spec.SQL(TableName)
	e.logger.WithFields(map[string]interface{}{
		"query": name,
		"sql":   query,
	}).Debug("Running catalog query")

	rows, err := e.db.Conn.QueryxContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: name, Reason: "execution failed", Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: name, Reason: "columns unreadable", Err: err}
	}

	result := &Result{Name: spec.Name, Title: spec.Title, Columns: columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, &QueryError{Query: name, Reason: "row scan failed", Err: err}
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: name, Reason: "row iteration failed", Err: err}
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// Summary describes the currently loaded dataset.
type Summary struct {
	Table    string     `json:"table"`
	Rows     int        `json:"rows"`
	Columns  []string   `json:"columns"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

// Summarize reports the store's current contents. Works on a store file
// left behind by a previous session, before any Load in this one.
func (e *Engine) Summarize(ctx context.Context) (*Summary, error) {
	available, err := e.tableColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store schema: %w", err)
	}

	var columns []string
	for col := range available {
		columns = append(columns, col)
	}

	var count int
	if len(columns) > 0 {
		row := e.db.Conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, TableName))
		if err := row.Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	return &Summary{
		Table:    TableName,
		Rows:     count,
		Columns:  columns,
		LoadedAt: e.loadedAt,
	}, nil
}

// tableColumns returns the set of columns present in the store's table.
// An absent table yields an empty set, not an error.
func (e *Engine) tableColumns(ctx context.Context) (map[string]bool, error) {
	rows, err := e.db.Conn.QueryContext(ctx,
		`SELECT name FROM pragma_table_info(?)`, TableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func createTableSQL(columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		colType, ok := columnTypes[col]
		if !ok {
			colType = "TEXT"
		}
		defs[i] = fmt.Sprintf("%q %s", col, colType)
	}
	return fmt.Sprintf(`CREATE TABLE %q (%s)`, TableName, strings.Join(defs, ", "))
}

func insertSQL(columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = fmt.Sprintf("%q", col)
		marks[i] = "?"
	}
	return fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		TableName, strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// storeValue converts a canonical value for insertion. Timestamps become
// their canonical text form so date() and ORDER BY work on them directly.
func storeValue(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.Format(dataset.TimestampLayout)
	}
	return v
}
