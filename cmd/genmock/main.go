// Command genmock writes small mock source spreadsheets with realistic
// headers and jurisdiction references so the pipeline can be exercised end to
// end without the researchers' private workbooks. File names and column
// headings line up with configs/mappings.yaml.
//
// Usage:
//
//	go run ./cmd/genmock -out data/sources
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// mockFile describes one generated source file as a header row plus data rows.
type mockFile struct {
	name string
	grid [][]string
}

var mockFiles = []mockFile{
	{
		name: "CA-WA-OR-disaster-laws.xlsx",
		grid: [][]string{
			{"State/Territory", "Key Statutes & Codes", "Local Authority", "Vulnerable Population Protections", "Language Access Requirements", "Notes"},
			{"California", "Gov. Code §8550 et seq.", "Broad local emergency powers", "Access and functional needs planning required", "Threshold languages mandated", "reviewed 2024"},
			{"Washington", "RCW 38.52", "Local emergency management councils", "", "Yes", ""},
			{"Oregon", "ORS 401", "County-level declarations", "Vulnerable populations registry", "", "partial"},
		},
	},
	{
		name: "Midwest-emergency-statutes.csv",
		grid: [][]string{
			{"State", "Statute", "Emergency Declaration Authority", "Mitigation Planning", "Mutual Aid Compacts"},
			{"Iowa, etc.", "Iowa Code §29C", "Governor and local", "Enhanced state plan", "EMAC member"},
			{"Illinois; Indiana", "20 ILCS 3305 / IC 10-14", "Governor", "Standard", "EMAC member"},
			{"Approach", "", "", "", ""},
		},
	},
	{
		name: "Territories-overview.xlsx",
		grid: [][]string{
			{"Jurisdiction", "Key Statutes & Codes", "Civil Rights Protections", "Disability & Functional Needs"},
			{"Guam, USVI, American Samoa, Northern Mariana Islands", "Organic Acts; local emergency codes", "Federal non-discrimination baseline", ""},
			{"Puerto Rico", "Ley 211-1999", "Constitutional protections", "Registro de poblaciones vulnerables"},
		},
	},
	{
		name: "Southwest-protections.csv",
		grid: [][]string{
			{"State", "Equity Initiatives", "Civil Rights Protections", "Key Statutes & Codes"},
			{"Texas", "", "Tex. Gov't Code ch. 418 anti-discrimination clause", "Tex. Gov't Code §418"},
			{"TX", "Equity task force (2023)", "Non-discrimination in sheltering", "Texas Disaster Act"},
			{"New Mexico", "Equity-focused recovery office", "", "NMSA §12-10"},
			{"Arizona", "", "", "ARS §26-301"},
		},
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for mock source files")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, mf := range mockFiles {
		path := filepath.Join(*outDir, mf.name)
		var err error
		switch filepath.Ext(mf.name) {
		case ".xlsx":
			err = writeWorkbook(path, mf.grid)
		case ".csv":
			err = writeCSV(path, mf.grid)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", mf.name, err)
		}
		log.Printf("%s: %d data rows", mf.name, len(mf.grid)-1)
	}

	log.Printf("wrote %d mock source files to %s", len(mockFiles), *outDir)
	return nil
}

func writeWorkbook(path string, grid [][]string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	sheet := f.GetSheetName(0)
	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeCSV(path string, grid [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // flushed below

	w := csv.NewWriter(f)
	if err := w.WriteAll(grid); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
