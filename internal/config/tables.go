package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/lawatlas/disaster-law-etl/internal/domain"
)

// MappingTable is the per-file column mapping configuration plus the merge
// precedence order. Schema drift in source workbooks is handled here, never
// in code.
type MappingTable struct {
	SourcePriority []string             `yaml:"source_priority,omitempty"`
	Files          []domain.FileMapping `yaml:"files"`
}

// ForFile returns the mapping whose pattern matches the file name.
// The first declared match wins; ok is false when no mapping applies.
func (t MappingTable) ForFile(name string) (domain.FileMapping, bool) {
	for _, m := range t.Files {
		if m.MatchesFile(name) {
			return m, true
		}
	}
	return domain.FileMapping{}, false
}

// Policy returns the configured merge precedence.
func (t MappingTable) Policy() domain.MergePolicy {
	return domain.MergePolicy{SourcePriority: t.SourcePriority}
}

// LoadMappings reads and validates the column mapping table from a YAML file.
func LoadMappings(path string) (MappingTable, error) {
	var table MappingTable
	if err := readYAML(path, &table); err != nil {
		return MappingTable{}, fmt.Errorf("load mappings: %w", err)
	}
	if len(table.Files) == 0 {
		return MappingTable{}, fmt.Errorf("load mappings: %s declares no file mappings", path)
	}
	for _, m := range table.Files {
		if m.Pattern == "" {
			return MappingTable{}, fmt.Errorf("load mappings: file mapping with empty pattern")
		}
		if len(m.Columns) == 0 {
			return MappingTable{}, fmt.Errorf("load mappings: %q maps no columns", m.Pattern)
		}
		hasRef := false
		for _, canonical := range m.Columns {
			if canonical == domain.FieldJurisdictionRef {
				hasRef = true
			} else if !domain.IsCanonicalField(canonical) {
				return MappingTable{}, fmt.Errorf("load mappings: %q maps to unknown field %q", m.Pattern, canonical)
			}
		}
		if !hasRef {
			return MappingTable{}, fmt.Errorf("load mappings: %q has no jurisdiction_ref column", m.Pattern)
		}
	}
	return table, nil
}

// LoadJurisdictions reads the authoritative jurisdiction set from a YAML file.
// A missing or corrupt set is a process-level configuration error, fatal at
// startup.
func LoadJurisdictions(path string) (*domain.JurisdictionSet, error) {
	var doc struct {
		Jurisdictions []domain.Jurisdiction `yaml:"jurisdictions"`
	}
	if err := readYAML(path, &doc); err != nil {
		return nil, fmt.Errorf("load jurisdictions: %w", err)
	}
	set, err := domain.NewJurisdictionSet(doc.Jurisdictions)
	if err != nil {
		return nil, fmt.Errorf("load jurisdictions: %w", err)
	}
	return set, nil
}

// LoadScoring reads and validates the scoring rule table from a YAML file.
func LoadScoring(path string) (domain.RuleTable, error) {
	var table domain.RuleTable
	if err := readYAML(path, &table); err != nil {
		return domain.RuleTable{}, fmt.Errorf("load scoring rules: %w", err)
	}
	if err := table.Validate(); err != nil {
		return domain.RuleTable{}, fmt.Errorf("load scoring rules: %w", err)
	}
	return table, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
