// Package domain models disaster-law protection data for U.S. jurisdictions.
//
// # Data Source
//
// Source data arrives as spreadsheet workbooks compiled by legal researchers,
// one workbook per region (e.g. "CA-WA-OR-disaster-laws.xlsx",
// "Midwest-statutes.xlsx"). Every workbook uses its own column headings and
// its own conventions for naming states and territories, so nothing about the
// input schema can be assumed; a per-file column mapping supplied as
// configuration declares which original column feeds which canonical field.
//
// # Canonical Fields
//
// All files are reconciled onto a fixed vocabulary of eleven fields:
//
//	key_statutes, local_authority, notable_provisions, vulnerable_protections,
//	civil_rights, disability_needs, language_access, equity_initiatives,
//	emergency_declaration, mitigation_planning, mutual_aid
//
// A cell can be in one of three states, and the distinction is preserved all
// the way through merge and scoring:
//
//	missing — the file has no column mapped to the field
//	empty   — the column exists but the cell is blank
//	data    — the cell holds text or a number
//
// Collapsing "missing" into "empty" (or either into zero) is what made
// earlier renditions of this dataset score most jurisdictions near zero, so
// [Value] keeps the three states explicit.
//
// # Jurisdiction References
//
// The jurisdiction column is free text. One row can name several
// jurisdictions ("Guam, USVI, American Samoa, Northern Mariana Islands") and
// may trail off with "etc." or "and others". [Expand] splits such references;
// a trailing etc. token never fabricates extra jurisdictions — it raises a
// reviewable flag instead. A reference that resolves whole against the
// authoritative set ("Washington, D.C.") is never split, even though it
// contains a separator.
//
// # Canonical Identifiers
//
// Every jurisdiction resolves to its USPS two-letter code ("CA", "DC", "GU",
// ...), which is exactly the location vocabulary the consuming choropleth
// component requires. Resolution is exact match, then case-insensitive match,
// then alias table — never fuzzy. The authoritative set holds 56 entries:
// the 50 states, the District of Columbia, and the five inhabited territories
// (PR, GU, VI, AS, MP).
//
// # Scoring
//
// The protection score is a weighted sum over configured components, scaled
// to 0–100 over the weights of the components whose inputs are present.
// Missing inputs are excluded from the denominator, so the score reads
// "protection demonstrated over available data". A separate completeness
// fraction reports how much data was available, letting consumers tell "low
// protection" apart from "low data".
package domain
