package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping() FileMapping {
	return FileMapping{
		Pattern: "CA-WA-OR",
		Region:  "West Coast",
		Columns: map[string]string{
			"State/Territory":      FieldJurisdictionRef,
			"Key Statutes & Codes": FieldKeyStatutes,
			"Local Authority":      FieldLocalAuthority,
			"Language Access":      FieldLanguageAccess,
		},
	}
}

func TestReconcile(t *testing.T) {
	t.Run("maps columns onto canonical fields", func(t *testing.T) {
		raw := RawRow{
			SourceFile: "CA-WA-OR-disaster-laws.xlsx",
			Fields: map[string]string{
				"State/Territory":      "California",
				"Key Statutes & Codes": "Gov. Code §8550",
				"Local Authority":      "",
				"Language Access":      "42",
			},
		}

		row := Reconcile(raw, testMapping())

		assert.Equal(t, "California", row.JurisdictionRef)
		assert.Equal(t, "West Coast", row.Region)
		assert.Equal(t, TextValue("Gov. Code §8550"), row.Fields[FieldKeyStatutes])
		assert.Equal(t, NumberValue(42), row.Fields[FieldLanguageAccess])
	})

	t.Run("present-but-empty is empty, not missing", func(t *testing.T) {
		raw := RawRow{
			SourceFile: "CA-WA-OR.xlsx",
			Fields: map[string]string{
				"State/Territory": "Oregon",
				"Local Authority": "   ",
			},
		}

		row := Reconcile(raw, testMapping())

		assert.Equal(t, Empty(), row.Fields[FieldLocalAuthority])
		assert.False(t, row.Fields[FieldLocalAuthority].IsMissing())
	})

	t.Run("mapped column absent from row stays missing", func(t *testing.T) {
		raw := RawRow{
			SourceFile: "CA-WA-OR.xlsx",
			Fields:     map[string]string{"State/Territory": "Washington"},
		}

		row := Reconcile(raw, testMapping())

		assert.True(t, row.Fields[FieldKeyStatutes].IsMissing())
	})

	t.Run("unmapped canonical fields are missing", func(t *testing.T) {
		raw := RawRow{
			SourceFile: "CA-WA-OR.xlsx",
			Fields:     map[string]string{"State/Territory": "Washington"},
		}

		row := Reconcile(raw, testMapping())

		require.Len(t, row.Fields, len(CanonicalFields))
		assert.True(t, row.Fields[FieldMutualAid].IsMissing())
		assert.True(t, row.Fields[FieldCivilRights].IsMissing())
	})

	t.Run("duplicate canonical targets resolve deterministically", func(t *testing.T) {
		// Workbooks carry both a "Statute" and a "Code" heading for the
		// statutes field; the winner must not depend on map iteration order.
		for i := 0; i < 200; i++ {
			mapping := FileMapping{
				Pattern: "Midwest",
				Columns: map[string]string{
					"State":   FieldJurisdictionRef,
					"Statute": FieldKeyStatutes,
					"Code":    FieldKeyStatutes,
				},
			}
			raw := RawRow{
				SourceFile: "Midwest-emergency-statutes.csv",
				Fields: map[string]string{
					"State":   "Iowa",
					"Statute": "Iowa Code chapter 29C",
					"Code":    "IC 29C",
				},
			}

			row := Reconcile(raw, mapping)

			require.Equal(t, TextValue("Iowa Code chapter 29C"), row.Fields[FieldKeyStatutes])
			require.Equal(t, "IC 29C", row.Extra["Code"])
		}
	})

	t.Run("duplicate target with one blank column keeps the data cell", func(t *testing.T) {
		mapping := FileMapping{
			Pattern: "Midwest",
			Columns: map[string]string{
				"State":   FieldJurisdictionRef,
				"Statute": FieldKeyStatutes,
				"Code":    FieldKeyStatutes,
			},
		}
		raw := RawRow{
			SourceFile: "Midwest-emergency-statutes.csv",
			Fields: map[string]string{
				"State":   "Iowa",
				"Statute": "",
				"Code":    "IC 29C",
			},
		}

		row := Reconcile(raw, mapping)

		assert.Equal(t, TextValue("IC 29C"), row.Fields[FieldKeyStatutes])
		assert.Equal(t, "", row.Extra["Statute"])
	})

	t.Run("duplicate target prefers a present blank over an absent column", func(t *testing.T) {
		mapping := FileMapping{
			Pattern: "Midwest",
			Columns: map[string]string{
				"State":   FieldJurisdictionRef,
				"Statute": FieldKeyStatutes,
				"Code":    FieldKeyStatutes,
			},
		}
		raw := RawRow{
			SourceFile: "Midwest-emergency-statutes.csv",
			Fields: map[string]string{
				"State": "Iowa",
				// "Code" heading exists in the mapping but not this row;
				// "Statute" is present and blank.
				"Statute": "",
			},
		}

		row := Reconcile(raw, mapping)

		assert.Equal(t, Empty(), row.Fields[FieldKeyStatutes])
	})

	t.Run("unmapped columns land in extra, never dropped", func(t *testing.T) {
		raw := RawRow{
			SourceFile: "CA-WA-OR.xlsx",
			Fields: map[string]string{
				"State/Territory": "Washington",
				"Notes":           "reviewed 2024",
			},
		}

		row := Reconcile(raw, testMapping())

		assert.Equal(t, "reviewed 2024", row.Extra["Notes"])
	})
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected Value
	}{
		{"blank", "", Empty()},
		{"whitespace only", "  \t ", Empty()},
		{"integer", "3", NumberValue(3)},
		{"decimal", "0.75", NumberValue(0.75)},
		{"text", "RCW 38.52", TextValue("RCW 38.52")},
		{"trimmed text", "  EMAC member ", TextValue("EMAC member")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCell(tt.cell))
		})
	}
}

func TestIsNoiseRef(t *testing.T) {
	assert.True(t, IsNoiseRef(""))
	assert.True(t, IsNoiseRef("Approach"))
	assert.True(t, IsNoiseRef("impact area"))
	assert.True(t, IsNoiseRef(" Protection Area "))
	assert.False(t, IsNoiseRef("Iowa"))
	assert.False(t, IsNoiseRef("Guam, USVI"))
}
