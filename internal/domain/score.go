package domain

import (
	"fmt"
	"strings"
)

// Rule kinds for scoring components.
const (
	// RulePresence grants the full component credit when the field holds
	// data; a present-but-blank cell grants none but still counts as
	// available data.
	RulePresence = "presence"
	// RuleTiered grades the field's text against the Tiers table
	// (case-insensitive); unmatched text grants no credit.
	RuleTiered = "tiered"
)

// Component maps one canonical field to a scoring contribution.
type Component struct {
	Name   string             `yaml:"name"`
	Field  string             `yaml:"field"`
	Rule   string             `yaml:"rule"`
	Weight float64            `yaml:"weight"`
	Tiers  map[string]float64 `yaml:"tiers,omitempty"`
}

// RuleTable is the configured scoring rule set. Weights and tier tables come
// from domain review, not code; the table is validated at startup and a bad
// table is fatal.
type RuleTable struct {
	Components []Component `yaml:"components"`
}

// Validate checks the rule table for structural errors.
func (t RuleTable) Validate() error {
	if len(t.Components) == 0 {
		return fmt.Errorf("scoring rule table has no components")
	}
	seen := make(map[string]bool, len(t.Components))
	for _, c := range t.Components {
		if c.Name == "" {
			return fmt.Errorf("scoring component with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate scoring component %q", c.Name)
		}
		seen[c.Name] = true
		if !IsCanonicalField(c.Field) {
			return fmt.Errorf("component %q references unknown field %q", c.Name, c.Field)
		}
		if c.Weight <= 0 {
			return fmt.Errorf("component %q has non-positive weight %g", c.Name, c.Weight)
		}
		switch c.Rule {
		case RulePresence:
		case RuleTiered:
			if len(c.Tiers) == 0 {
				return fmt.Errorf("tiered component %q has no tiers", c.Name)
			}
			for label, credit := range c.Tiers {
				if credit < 0 || credit > 1 {
					return fmt.Errorf("component %q tier %q credit %g outside [0,1]", c.Name, label, credit)
				}
			}
		default:
			return fmt.Errorf("component %q has unknown rule %q", c.Name, c.Rule)
		}
	}
	return nil
}

// Score computes the record's protection score and completeness in place.
//
// The score is a weighted sum of per-component credits scaled to 0–100 over
// the weights of the components whose field is non-missing. Missing fields
// contribute nothing and are excluded from the denominator, so sparse data
// lowers completeness, not the score. With zero non-missing components the
// score stays nil — "no data" is not "no protection".
//
// Deterministic: the same record and table always yield the same result.
func Score(rec *ConsolidatedRecord, table RuleTable) {
	var weighted, availableWeight float64
	available := 0

	for _, c := range table.Components {
		fv, ok := rec.Fields[c.Field]
		if !ok || fv.Value.IsMissing() {
			continue
		}
		available++
		availableWeight += c.Weight
		weighted += c.Weight * componentCredit(c, fv.Value)
	}

	rec.Completeness = 0
	if n := len(table.Components); n > 0 {
		rec.Completeness = float64(available) / float64(n)
	}

	if availableWeight == 0 {
		rec.Score = nil
		return
	}
	score := 100 * weighted / availableWeight
	rec.Score = &score
}

// componentCredit evaluates one component's rule against a non-missing value,
// returning a credit in [0,1].
func componentCredit(c Component, v Value) float64 {
	switch c.Rule {
	case RulePresence:
		if v.HasData() {
			return 1
		}
		return 0
	case RuleTiered:
		if !v.HasData() {
			return 0
		}
		key := strings.ToLower(strings.TrimSpace(v.String()))
		return c.Tiers[key]
	default:
		return 0
	}
}

// Data-availability tiers surfaced to the visualization layer, mirroring the
// dashboard's categorical coverage levels.
const (
	TierRich     = "rich"
	TierModerate = "moderate"
	TierLimited  = "limited"
)

// DataTier buckets a completeness fraction into a coverage tier.
func DataTier(completeness float64) string {
	switch {
	case completeness >= 0.7:
		return TierRich
	case completeness >= 0.4:
		return TierModerate
	default:
		return TierLimited
	}
}
