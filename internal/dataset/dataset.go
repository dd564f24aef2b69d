// Package dataset assembles finalized per-jurisdiction records into an
// immutable, queryable dataset for the visualization layer and for operator
// review of unresolved rows.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lawatlas/disaster-law-etl/internal/domain"
)

// ErrNotFound is returned by Lookup for an identifier absent from the dataset.
var ErrNotFound = errors.New("jurisdiction not in dataset")

// VizRecord is the exact payload shape the choropleth component consumes.
// JurisdictionID uses the component's location-code vocabulary (USPS
// two-letter codes); this exact-match requirement is a hard external
// contract, not an internal choice.
type VizRecord struct {
	JurisdictionID string   `json:"jurisdiction_id"`
	DisplayName    string   `json:"display_name"`
	Region         string   `json:"region,omitempty"`
	Score          *float64 `json:"score"`
	Completeness   float64  `json:"completeness"`
	DataTier       string   `json:"data_tier"`
}

// Dataset is the finalized, read-only result of one pipeline run.
type Dataset struct {
	records    []domain.ConsolidatedRecord // sorted by display name
	byID       map[string]int
	unresolved []domain.Unresolved
	builtAt    time.Time
}

// Build finalizes consolidated records into a Dataset. Every record must
// carry an authoritative jurisdiction ID and each ID may appear once; either
// violation means an upstream bug, so Build fails rather than papering over
// it. Display names are stamped from the authoritative set.
func Build(records []domain.ConsolidatedRecord, unresolved []domain.Unresolved, set *domain.JurisdictionSet) (*Dataset, error) {
	ds := &Dataset{
		records:    make([]domain.ConsolidatedRecord, len(records)),
		byID:       make(map[string]int, len(records)),
		unresolved: append([]domain.Unresolved(nil), unresolved...),
		builtAt:    domain.Now(),
	}
	copy(ds.records, records)

	for i := range ds.records {
		id := ds.records[i].JurisdictionID
		name := set.DisplayName(id)
		if name == "" {
			return nil, fmt.Errorf("record %q: identifier not in authoritative set", id)
		}
		ds.records[i].DisplayName = name
	}

	sort.Slice(ds.records, func(i, k int) bool {
		return ds.records[i].DisplayName < ds.records[k].DisplayName
	})
	for i := range ds.records {
		id := ds.records[i].JurisdictionID
		if _, dup := ds.byID[id]; dup {
			return nil, fmt.Errorf("duplicate consolidated record for %q", id)
		}
		ds.byID[id] = i
	}

	return ds, nil
}

// Restore rebuilds a Dataset from previously persisted records, trusting the
// display names and build timestamp stored with them.
func Restore(records []domain.ConsolidatedRecord, unresolved []domain.Unresolved, builtAt time.Time) (*Dataset, error) {
	ds := &Dataset{
		records:    make([]domain.ConsolidatedRecord, len(records)),
		byID:       make(map[string]int, len(records)),
		unresolved: append([]domain.Unresolved(nil), unresolved...),
		builtAt:    builtAt,
	}
	copy(ds.records, records)
	sort.Slice(ds.records, func(i, k int) bool {
		return ds.records[i].DisplayName < ds.records[k].DisplayName
	})
	for i := range ds.records {
		id := ds.records[i].JurisdictionID
		if _, dup := ds.byID[id]; dup {
			return nil, fmt.Errorf("duplicate persisted record for %q", id)
		}
		ds.byID[id] = i
	}
	return ds, nil
}

// Lookup returns the consolidated record for a canonical identifier.
func (d *Dataset) Lookup(jurisdictionID string) (domain.ConsolidatedRecord, error) {
	i, ok := d.byID[jurisdictionID]
	if !ok {
		return domain.ConsolidatedRecord{}, fmt.Errorf("%q: %w", jurisdictionID, ErrNotFound)
	}
	return d.records[i], nil
}

// All returns every record, alphabetical by jurisdiction display name.
func (d *Dataset) All() []domain.ConsolidatedRecord {
	out := make([]domain.ConsolidatedRecord, len(d.records))
	copy(out, d.records)
	return out
}

// ForVisualization projects the dataset into the map component's payload,
// in the same stable alphabetical order as All.
func (d *Dataset) ForVisualization() []VizRecord {
	out := make([]VizRecord, 0, len(d.records))
	for _, r := range d.records {
		out = append(out, VizRecord{
			JurisdictionID: r.JurisdictionID,
			DisplayName:    r.DisplayName,
			Region:         r.Region,
			Score:          r.Score,
			Completeness:   r.Completeness,
			DataTier:       domain.DataTier(r.Completeness),
		})
	}
	return out
}

// Unresolved returns every row-level failure and review flag from the run.
func (d *Dataset) Unresolved() []domain.Unresolved {
	out := make([]domain.Unresolved, len(d.unresolved))
	copy(out, d.unresolved)
	return out
}

// BuiltAt returns when the dataset was finalized.
func (d *Dataset) BuiltAt() time.Time { return d.builtAt }

// Len returns the number of jurisdictions in the dataset.
func (d *Dataset) Len() int { return len(d.records) }
