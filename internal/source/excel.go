package source

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rideinsights/backend/internal/dataset"
)

// ReadWorkbook reads the raw booking sheet of an Excel workbook into a raw
// table. An empty sheetName selects the first sheet. The first row is taken
// as the header; short rows are padded so every record carries every column.
func ReadWorkbook(path, sheetName string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheetName)
	}

	t := dataset.NewTable(rows[0]...)
	for _, cells := range rows[1:] {
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
