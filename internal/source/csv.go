package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rideinsights/backend/internal/dataset"
)

// ReadCSV reads a canonical cache file into a raw table. All cells come
// back as text; the Normalizer re-derives types, which is a no-op on data
// the cache writer produced.
func ReadCSV(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("cache %s has no header row", path)
	}

	t := dataset.NewTable(records[0]...)
	for _, cells := range records[1:] {
		row := make(dataset.Record, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// WriteCSV writes a canonical table to the cache path, replacing any prior
// file wholesale.
func WriteCSV(path string, t *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write cache header: %w", err)
	}

	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			cells[i] = formatValue(row[col])
		}
		if err := w.Write(cells); err != nil {
			return fmt.Errorf("failed to write cache row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush cache %s: %w", path, err)
	}
	return nil
}

// formatValue serializes a canonical value for the cache. Nulls become
// empty cells, which read back as nulls.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(dataset.TimestampLayout)
	default:
		return fmt.Sprint(x)
	}
}
