package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readWorkbook reads the first sheet of an .xlsx workbook as a cell grid.
// Source workbooks carry one data sheet each; extra sheets hold researcher
// notes and are ignored.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, path, err)
	}
	return rows, nil
}
