package domain

import (
	"sort"
	"strconv"
	"strings"
)

// FileMapping declares, for one source file, which original column headings
// feed which canonical fields. Mappings are external configuration — schema
// drift across files is a config change, not a code change.
type FileMapping struct {
	// Pattern is matched against source file base names (prefix or exact,
	// case-insensitive).
	Pattern string `yaml:"pattern"`
	// Region tags every row from matching files, e.g. "West Coast".
	Region string `yaml:"region,omitempty"`
	// Columns maps original column heading -> canonical field name
	// (or "jurisdiction_ref" for the jurisdiction column).
	Columns map[string]string `yaml:"columns"`
}

// MatchesFile reports whether the mapping applies to the given file name.
func (m FileMapping) MatchesFile(name string) bool {
	name = strings.ToLower(name)
	pattern := strings.ToLower(m.Pattern)
	return name == pattern || strings.HasPrefix(name, pattern)
}

// Reconcile maps one raw row onto the canonical field vocabulary.
//
// Every canonical field in the mapping is populated from its original column:
// a blank cell becomes the explicit empty value, anything else is parsed as a
// number or kept as text. Canonical fields the mapping never names stay
// missing — distinct from empty, so downstream stages can exclude them from
// scoring denominators. Original columns without a mapping are preserved
// verbatim in Extra rather than discarded.
//
// A mapping may route several original columns to the same canonical field
// (researcher workbooks carry both "Statute" and "Code" headings). The
// fuller cell wins, deterministically, and the losing cells keep their
// original headings in Extra.
func Reconcile(raw RawRow, mapping FileMapping) NormalizedRow {
	row := NormalizedRow{
		SourceFile: raw.SourceFile,
		Region:     mapping.Region,
		Fields:     make(map[string]Value, len(CanonicalFields)),
		Extra:      make(map[string]string),
	}
	for _, f := range CanonicalFields {
		row.Fields[f] = Missing()
	}

	// Group original columns by canonical target so duplicate targets
	// resolve by rule, never by map iteration order.
	targets := make(map[string][]string, len(mapping.Columns))
	mapped := make(map[string]bool, len(mapping.Columns))
	for original, canonical := range mapping.Columns {
		mapped[original] = true
		targets[canonical] = append(targets[canonical], original)
	}

	for canonical, originals := range targets {
		sort.Strings(originals)
		winner := pickColumn(originals, raw.Fields)
		for _, original := range originals {
			if original == winner {
				continue
			}
			if cell, present := raw.Fields[original]; present {
				row.Extra[original] = cell
			}
		}

		cell, present := raw.Fields[winner]
		if canonical == FieldJurisdictionRef {
			row.JurisdictionRef = strings.TrimSpace(cell)
			continue
		}
		if !IsCanonicalField(canonical) {
			// Unknown target fields are configuration noise; keep the cell.
			if present {
				row.Extra[winner] = cell
			}
			continue
		}
		if !present {
			continue // stays missing
		}
		row.Fields[canonical] = ParseCell(cell)
	}

	for original, cell := range raw.Fields {
		if !mapped[original] {
			row.Extra[original] = cell
		}
	}

	return row
}

// pickColumn chooses which of several original columns feeds one canonical
// field: data beats blank, present beats absent, then the longer cell, then
// column name order.
func pickColumn(originals []string, cells map[string]string) string {
	winner := originals[0]
	for _, col := range originals[1:] {
		if columnBeats(col, winner, cells) {
			winner = col
		}
	}
	return winner
}

func columnBeats(a, b string, cells map[string]string) bool {
	ca, presentA := cells[a]
	cb, presentB := cells[b]
	ca, cb = strings.TrimSpace(ca), strings.TrimSpace(cb)
	if (ca != "") != (cb != "") {
		return ca != ""
	}
	if presentA != presentB {
		return presentA
	}
	return len(ca) > len(cb)
}

// ParseCell types a raw cell: blank -> empty, numeric -> number, else text.
func ParseCell(cell string) Value {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return Empty()
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberValue(n)
	}
	return TextValue(trimmed)
}

// noiseRefs are section headings that appear in the jurisdiction column of
// some workbooks. Rows carrying them describe the sheet layout, not a
// jurisdiction.
var noiseRefs = map[string]bool{
	"approach":        true,
	"aspect":          true,
	"impact area":     true,
	"protection area": true,
	"region":          true,
}

// IsNoiseRef reports whether a jurisdiction reference is a layout heading or
// blank and the row should be skipped (counted, not silently dropped).
func IsNoiseRef(ref string) bool {
	return ref == "" || noiseRefs[strings.ToLower(strings.TrimSpace(ref))]
}
