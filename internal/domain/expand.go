package domain

import (
	"regexp"
	"strings"
)

// refSplitRe splits a multi-jurisdiction reference on the separators observed
// in source workbooks: comma, semicolon, "and", "&".
var refSplitRe = regexp.MustCompile(`(?i)\s*(?:,|;|&|\band\b)\s*`)

// ambiguousTokens are trailing tokens that imply unnamed jurisdictions.
// They expand to nothing: inventing jurisdictions from "etc." fabricates data.
var ambiguousTokens = map[string]bool{
	"etc":        true,
	"etc.":       true,
	"others":     true,
	"and others": true,
	"other":      true,
}

// Expand turns one normalized row into one JurisdictionRow per jurisdiction
// named in its reference text, each carrying a copy of the fields.
//
// The whole trimmed reference is checked against the authoritative set
// before any splitting: names like "Washington, D.C." contain a separator,
// and splitting them would assign the district's data to Washington state.
//
// A trailing "etc."/"others" token is reported via ambiguous=true so an
// operator can review the source row; no extra jurisdictions are guessed.
// A reference with zero parseable tokens is an ExpansionError.
func Expand(row NormalizedRow, set *JurisdictionSet) (rows []JurisdictionRow, ambiguous bool, err error) {
	whole := strings.TrimSpace(row.JurisdictionRef)
	if _, ok := set.Resolve(whole); ok {
		return []JurisdictionRow{{
			SourceFile:   row.SourceFile,
			Region:       row.Region,
			Jurisdiction: whole,
			Fields:       copyFields(row.Fields),
			Extra:        copyExtra(row.Extra),
		}}, false, nil
	}

	tokens := refSplitRe.Split(row.JurisdictionRef, -1)

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if ambiguousTokens[strings.ToLower(tok)] {
			ambiguous = true
			continue
		}
		rows = append(rows, JurisdictionRow{
			SourceFile:   row.SourceFile,
			Region:       row.Region,
			Jurisdiction: tok,
			Fields:       copyFields(row.Fields),
			Extra:        copyExtra(row.Extra),
		})
	}

	if len(rows) == 0 {
		return nil, ambiguous, &ExpansionError{SourceFile: row.SourceFile, Ref: row.JurisdictionRef}
	}
	return rows, ambiguous, nil
}

func copyFields(in map[string]Value) map[string]Value {
	out := make(map[string]Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyExtra(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
