package domain

import (
	"sort"
	"strings"
)

// MergePolicy resolves conflicts when multiple files contribute non-missing
// values for the same field of the same jurisdiction. SourcePriority lists
// file-name patterns in decreasing precedence (prefix match, like mappings);
// files not listed rank below all listed ones. Ties fall back to the longer
// value — researcher workbooks accrete detail, so the fuller cell is the
// better-curated one — and finally to file name order for determinism.
type MergePolicy struct {
	SourcePriority []string `yaml:"source_priority,omitempty"`
}

// rank returns the precedence index of a source file; lower wins.
func (p MergePolicy) rank(sourceFile string) int {
	name := strings.ToLower(sourceFile)
	for i, pattern := range p.SourcePriority {
		pat := strings.ToLower(pattern)
		if name == pat || strings.HasPrefix(name, pat) {
			return i
		}
	}
	return len(p.SourcePriority)
}

// contribution is one file's value for one field during a merge.
type contribution struct {
	value  Value
	source string
}

// Merge groups canonical rows by jurisdiction and consolidates each group
// into exactly one record.
//
// Per field, independently: a single non-missing value wins outright;
// conflicting non-missing values are ordered by the policy and the losers are
// recorded in Discarded; a field every contributor is missing stays missing —
// never defaulted to zero or "", which is precisely the failure mode that
// produced spuriously low scores upstream of this design.
//
// Records are returned sorted by jurisdiction ID. DisplayName is left for the
// dataset builder, which owns the authoritative set.
func Merge(rows []CanonicalRow, policy MergePolicy) []ConsolidatedRecord {
	groups := make(map[string][]CanonicalRow)
	for _, r := range rows {
		groups[r.JurisdictionID] = append(groups[r.JurisdictionID], r)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]ConsolidatedRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, mergeGroup(id, groups[id], policy))
	}
	return records
}

func mergeGroup(id string, group []CanonicalRow, policy MergePolicy) ConsolidatedRecord {
	// Deterministic input order regardless of upstream scheduling.
	sort.SliceStable(group, func(i, k int) bool {
		if group[i].SourceFile != group[k].SourceFile {
			return group[i].SourceFile < group[k].SourceFile
		}
		return false
	})

	rec := ConsolidatedRecord{
		JurisdictionID: id,
		Fields:         make(map[string]FieldValue, len(CanonicalFields)),
	}

	for _, field := range CanonicalFields {
		var contribs []contribution
		for _, row := range group {
			v, ok := row.Fields[field]
			if !ok || v.IsMissing() {
				continue
			}
			contribs = append(contribs, contribution{value: v, source: row.SourceFile})
		}
		rec.Fields[field] = resolveField(contribs, policy)
	}

	for _, row := range group {
		if rec.Region == "" && row.Region != "" {
			rec.Region = row.Region
		}
		for col, cell := range row.Extra {
			rec.Extra = append(rec.Extra, ExtraCell{SourceFile: row.SourceFile, Column: col, Value: cell})
		}
	}
	sort.Slice(rec.Extra, func(i, k int) bool {
		if rec.Extra[i].SourceFile != rec.Extra[k].SourceFile {
			return rec.Extra[i].SourceFile < rec.Extra[k].SourceFile
		}
		return rec.Extra[i].Column < rec.Extra[k].Column
	})

	return rec
}

// resolveField applies the precedence policy to one field's contributions.
func resolveField(contribs []contribution, policy MergePolicy) FieldValue {
	if len(contribs) == 0 {
		return FieldValue{Value: Missing()}
	}

	sort.SliceStable(contribs, func(i, k int) bool {
		return beats(contribs[i], contribs[k], policy)
	})

	fv := FieldValue{Value: contribs[0].value}
	for _, c := range contribs {
		fv.Sources = append(fv.Sources, c.source)
	}
	for _, c := range contribs[1:] {
		if c.value != contribs[0].value {
			fv.Discarded = append(fv.Discarded, DiscardedValue{Value: c.value, SourceFile: c.source})
		}
	}
	return fv
}

// beats reports whether contribution a takes precedence over b:
// data over blank, then source priority, then longer value, then file name.
func beats(a, b contribution, policy MergePolicy) bool {
	if a.value.HasData() != b.value.HasData() {
		return a.value.HasData()
	}
	ra, rb := policy.rank(a.source), policy.rank(b.source)
	if ra != rb {
		return ra < rb
	}
	la, lb := len(a.value.String()), len(b.value.String())
	if la != lb {
		return la > lb
	}
	return a.source < b.source
}
