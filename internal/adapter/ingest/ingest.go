// Package ingest reads spreadsheet workbooks and CSV exports into raw rows.
// It is the only place that touches source files; everything downstream works
// on untyped key→value rows.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lawatlas/disaster-law-etl/internal/domain"
	"github.com/lawatlas/disaster-law-etl/internal/pipeline"
)

// FileSource is one source file on disk. It implements pipeline.RowSource.
type FileSource struct {
	path string
}

// NewFileSource wraps a spreadsheet or CSV path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file's base name, which mapping patterns match against.
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// Rows reads the file's data rows. The first non-empty row is the header;
// every later row becomes a RawRow keyed by those headings. Cells beyond the
// header width are kept under synthetic "column N" keys so reconciliation can
// still surface them in the extra bucket.
func (s *FileSource) Rows() ([]domain.RawRow, error) {
	var grid [][]string
	var err error
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".xlsx":
		grid, err = readWorkbook(s.path)
	case ".csv":
		grid, err = readCSV(s.path)
	default:
		return nil, fmt.Errorf("unsupported source file type: %s", s.path)
	}
	if err != nil {
		return nil, err
	}
	return gridToRows(s.Name(), grid), nil
}

// Discover lists the supported source files in a directory, sorted by name
// for deterministic run order.
func Discover(dir string) ([]pipeline.RowSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover sources: %w", err)
	}

	var sources []pipeline.RowSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx", ".csv":
			sources = append(sources, NewFileSource(filepath.Join(dir, e.Name())))
		}
	}
	sort.Slice(sources, func(i, k int) bool { return sources[i].Name() < sources[k].Name() })
	return sources, nil
}

// gridToRows converts a cell grid into raw rows using the first non-empty
// row as the header.
func gridToRows(sourceFile string, grid [][]string) []domain.RawRow {
	headerIdx := -1
	for i, row := range grid {
		if !rowIsBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	header := grid[headerIdx]
	var rows []domain.RawRow
	for _, cells := range grid[headerIdx+1:] {
		if rowIsBlank(cells) {
			continue
		}
		fields := make(map[string]string, len(cells))
		for i, cell := range cells {
			key := fmt.Sprintf("column %d", i+1)
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				key = strings.TrimSpace(header[i])
			}
			// A repeated header label must not swallow the earlier column.
			if _, taken := fields[key]; taken {
				key = fmt.Sprintf("%s (column %d)", key, i+1)
			}
			fields[key] = cell
		}
		rows = append(rows, domain.RawRow{SourceFile: sourceFile, Fields: fields})
	}
	return rows
}

func rowIsBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
