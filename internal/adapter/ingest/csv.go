package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
)

// readCSV reads a CSV export as a cell grid. Researcher exports have ragged
// rows, so per-record field counting is disabled.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	grid, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return grid, nil
}
