package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeTempXLSX(t *testing.T, dir, name string, grid [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestFileSourceCSV(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads header and data rows", func(t *testing.T) {
		path := writeTempCSV(t, dir, "midwest.csv", "State,Statute\nIowa,Iowa Code §29C\nKansas,K.S.A. 48-904\n")
		src := NewFileSource(path)

		assert.Equal(t, "midwest.csv", src.Name())

		rows, err := src.Rows()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "midwest.csv", rows[0].SourceFile)
		assert.Equal(t, "Iowa", rows[0].Fields["State"])
		assert.Equal(t, "K.S.A. 48-904", rows[1].Fields["Statute"])
	})

	t.Run("skips leading blank rows before the header", func(t *testing.T) {
		path := writeTempCSV(t, dir, "padded.csv", ",\n,\nState,Statute\nTexas,Disaster Act\n")
		rows, err := NewFileSource(path).Rows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Texas", rows[0].Fields["State"])
	})

	t.Run("skips blank data rows", func(t *testing.T) {
		path := writeTempCSV(t, dir, "gaps.csv", "State,Statute\nTexas,Disaster Act\n,\nIowa,Iowa Code\n")
		rows, err := NewFileSource(path).Rows()
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("ragged rows keep extra cells under synthetic keys", func(t *testing.T) {
		path := writeTempCSV(t, dir, "ragged.csv", "State,Statute\nTexas,Disaster Act,stray note\n")
		rows, err := NewFileSource(path).Rows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "stray note", rows[0].Fields["column 3"])
	})

	t.Run("repeated header labels keep both columns", func(t *testing.T) {
		path := writeTempCSV(t, dir, "duped.csv", "State,Statute,Statute\nTexas,Disaster Act,Tex. Gov't Code §418\n")
		rows, err := NewFileSource(path).Rows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Disaster Act", rows[0].Fields["Statute"])
		assert.Equal(t, "Tex. Gov't Code §418", rows[0].Fields["Statute (column 3)"])
	})

	t.Run("blank header cells get synthetic keys", func(t *testing.T) {
		path := writeTempCSV(t, dir, "blankhdr.csv", "State,\nTexas,Disaster Act\n")
		rows, err := NewFileSource(path).Rows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Disaster Act", rows[0].Fields["column 2"])
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(dir, "nope.csv")).Rows()
		assert.Error(t, err)
	})
}

func TestFileSourceXLSX(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads workbook grid", func(t *testing.T) {
		path := writeTempXLSX(t, dir, "west.xlsx", [][]string{
			{"State", "Statute"},
			{"California", "Gov. Code §8550"},
			{"Washington", "RCW 38.52"},
		})
		src := NewFileSource(path)

		rows, err := src.Rows()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Gov. Code §8550", rows[0].Fields["Statute"])
		assert.Equal(t, "Washington", rows[1].Fields["State"])
	})

	t.Run("header whitespace is trimmed", func(t *testing.T) {
		path := writeTempXLSX(t, dir, "padheaders.xlsx", [][]string{
			{" State ", "Statute"},
			{"Oregon", "ORS 401"},
		})
		rows, err := NewFileSource(path).Rows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Oregon", rows[0].Fields["State"])
	})
}

func TestFileSourceUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := writeTempCSV(t, dir, "notes.txt", "irrelevant")
	_, err := NewFileSource(path).Rows()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source file type")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeTempCSV(t, dir, "b-midwest.csv", "State\nIowa\n")
	writeTempXLSX(t, dir, "a-west.xlsx", [][]string{{"State"}, {"California"}})
	writeTempCSV(t, dir, "readme.txt", "not a source")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	sources, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a-west.xlsx", sources[0].Name())
	assert.Equal(t, "b-midwest.csv", sources[1].Name())

	t.Run("missing directory", func(t *testing.T) {
		_, err := Discover(filepath.Join(dir, "nowhere"))
		assert.Error(t, err)
	})
}

func TestGridToRows(t *testing.T) {
	t.Run("empty grid yields no rows", func(t *testing.T) {
		assert.Nil(t, gridToRows("x.csv", nil))
		assert.Nil(t, gridToRows("x.csv", [][]string{{"", ""}}))
	})

	t.Run("source file stamped on every row", func(t *testing.T) {
		rows := gridToRows("south.csv", [][]string{{"State"}, {"Texas"}, {"Florida"}})
		require.Len(t, rows, 2)
		for _, r := range rows {
			assert.Equal(t, "south.csv", r.SourceFile)
		}
	})
}
