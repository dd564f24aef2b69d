package domain

import "strconv"

// Canonical field names every source file is reconciled onto.
const (
	FieldKeyStatutes           = "key_statutes"
	FieldLocalAuthority        = "local_authority"
	FieldNotableProvisions     = "notable_provisions"
	FieldVulnerableProtections = "vulnerable_protections"
	FieldCivilRights           = "civil_rights"
	FieldDisabilityNeeds       = "disability_needs"
	FieldLanguageAccess        = "language_access"
	FieldEquityInitiatives     = "equity_initiatives"
	FieldEmergencyDeclaration  = "emergency_declaration"
	FieldMitigationPlanning    = "mitigation_planning"
	FieldMutualAid             = "mutual_aid"

	// FieldJurisdictionRef is the pseudo-field a file's jurisdiction column
	// maps to; it never appears in NormalizedRow.Fields.
	FieldJurisdictionRef = "jurisdiction_ref"
)

// CanonicalFields lists the field vocabulary in a fixed order.
var CanonicalFields = []string{
	FieldKeyStatutes,
	FieldLocalAuthority,
	FieldNotableProvisions,
	FieldVulnerableProtections,
	FieldCivilRights,
	FieldDisabilityNeeds,
	FieldLanguageAccess,
	FieldEquityInitiatives,
	FieldEmergencyDeclaration,
	FieldMitigationPlanning,
	FieldMutualAid,
}

// IsCanonicalField reports whether name is part of the fixed field vocabulary.
func IsCanonicalField(name string) bool {
	for _, f := range CanonicalFields {
		if f == name {
			return true
		}
	}
	return false
}

// Kind distinguishes the three cell states plus the two data types.
type Kind int

const (
	// KindMissing means the source file had no column mapped to the field.
	KindMissing Kind = iota
	// KindEmpty means the column existed but the cell was blank.
	KindEmpty
	KindText
	KindNumber
)

// Value is one canonical field's typed cell value. The missing/empty/data
// distinction is load-bearing: a missing field is excluded from scoring
// denominators, an empty one is not.
type Value struct {
	Kind   Kind    `json:"kind"`
	Text   string  `json:"text,omitempty"`
	Number float64 `json:"number,omitempty"`
}

// Missing returns the explicit missing marker.
func Missing() Value { return Value{Kind: KindMissing} }

// Empty returns a present-but-blank value.
func Empty() Value { return Value{Kind: KindEmpty} }

// TextValue wraps non-blank cell text.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue wraps a numeric cell.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// IsMissing reports whether the field was absent from the source schema.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// HasData reports whether the value carries actual content (text or number).
func (v Value) HasData() bool { return v.Kind == KindText || v.Kind == KindNumber }

// String renders the value for provenance records and operator output.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindEmpty:
		return ""
	default:
		return "<missing>"
	}
}

// RawRow is one untyped row from one source file, as produced by the ingest
// adapters. Fields maps original column headings to raw cell text.
type RawRow struct {
	SourceFile string
	Fields     map[string]string
}

// NormalizedRow is a RawRow after schema reconciliation: canonical field
// names, typed values, and the not-yet-resolved jurisdiction reference.
// Columns with no canonical mapping are preserved in Extra.
type NormalizedRow struct {
	SourceFile      string
	Region          string
	JurisdictionRef string
	Fields          map[string]Value
	Extra           map[string]string
}

// JurisdictionRow is a NormalizedRow narrowed to a single jurisdiction
// mention. One NormalizedRow expands to 1..N JurisdictionRows.
type JurisdictionRow struct {
	SourceFile   string
	Region       string
	Jurisdiction string
	Fields       map[string]Value
	Extra        map[string]string
}

// CanonicalRow is a JurisdictionRow whose jurisdiction resolved to an
// authoritative identifier.
type CanonicalRow struct {
	JurisdictionID string
	SourceFile     string
	Region         string
	Fields         map[string]Value
	Extra          map[string]string
}

// DiscardedValue records a merge loser so conflicting source data stays
// auditable instead of being silently overwritten.
type DiscardedValue struct {
	Value      Value  `json:"value"`
	SourceFile string `json:"source_file"`
}

// FieldValue is one consolidated field: the winning value, every file that
// contributed a non-missing value, and the alternatives the precedence rule
// discarded.
type FieldValue struct {
	Value     Value            `json:"value"`
	Sources   []string         `json:"sources,omitempty"`
	Discarded []DiscardedValue `json:"discarded,omitempty"`
}

// ExtraCell preserves an unmapped source column on the consolidated record.
type ExtraCell struct {
	SourceFile string `json:"source_file"`
	Column     string `json:"column"`
	Value      string `json:"value"`
}

// ConsolidatedRecord is the single per-jurisdiction record the dataset is
// built from. Score is nil until the scorer runs, and stays nil when no
// scoring component had data.
type ConsolidatedRecord struct {
	JurisdictionID string                `json:"jurisdiction_id"`
	DisplayName    string                `json:"display_name"`
	Region         string                `json:"region,omitempty"`
	Fields         map[string]FieldValue `json:"fields"`
	Extra          []ExtraCell           `json:"extra,omitempty"`
	Score          *float64              `json:"score"`
	Completeness   float64               `json:"completeness"`
}

// Stage names used in unresolved-row records.
const (
	StageReconcile    = "reconcile"
	StageExpand       = "expand"
	StageCanonicalize = "canonicalize"
)

// Unresolved records a row-level failure or review flag with enough context
// for an operator to fix the source data or the mapping configuration.
type Unresolved struct {
	SourceFile string `json:"source_file"`
	RawText    string `json:"raw_text"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}
