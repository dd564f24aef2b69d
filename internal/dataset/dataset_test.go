package dataset

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawatlas/disaster-law-etl/internal/domain"
)

func testSet(t *testing.T) *domain.JurisdictionSet {
	t.Helper()
	set, err := domain.NewJurisdictionSet([]domain.Jurisdiction{
		{ID: "CA", Name: "California"},
		{ID: "GU", Name: "Guam", Territory: true},
		{ID: "IA", Name: "Iowa"},
		{ID: "TX", Name: "Texas"},
	})
	require.NoError(t, err)
	return set
}

func testRecord(id string, score *float64, completeness float64) domain.ConsolidatedRecord {
	return domain.ConsolidatedRecord{
		JurisdictionID: id,
		Fields:         map[string]domain.FieldValue{},
		Score:          score,
		Completeness:   completeness,
	}
}

func ptr(f float64) *float64 { return &f }

func TestBuild(t *testing.T) {
	set := testSet(t)

	t.Run("stamps display names and sorts alphabetically", func(t *testing.T) {
		ds, err := Build([]domain.ConsolidatedRecord{
			testRecord("TX", ptr(70), 0.8),
			testRecord("CA", ptr(90), 1),
			testRecord("GU", nil, 0),
		}, nil, set)

		require.NoError(t, err)
		all := ds.All()
		require.Len(t, all, 3)
		assert.Equal(t, "California", all[0].DisplayName)
		assert.Equal(t, "Guam", all[1].DisplayName)
		assert.Equal(t, "Texas", all[2].DisplayName)
	})

	t.Run("rejects identifiers outside the authoritative set", func(t *testing.T) {
		_, err := Build([]domain.ConsolidatedRecord{testRecord("ZZ", nil, 0)}, nil, set)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in authoritative set")
	})

	t.Run("rejects duplicate records", func(t *testing.T) {
		_, err := Build([]domain.ConsolidatedRecord{
			testRecord("CA", nil, 0),
			testRecord("CA", nil, 0),
		}, nil, set)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("stamps build time from the clock", func(t *testing.T) {
		frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		domain.SetClock(clockwork.NewFakeClockAt(frozen))
		defer domain.SetClock(nil)

		ds, err := Build(nil, nil, set)
		require.NoError(t, err)
		assert.Equal(t, frozen, ds.BuiltAt())
	})
}

func TestLookup(t *testing.T) {
	set := testSet(t)
	ds, err := Build([]domain.ConsolidatedRecord{testRecord("IA", ptr(55), 0.5)}, nil, set)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		rec, err := ds.Lookup("IA")
		require.NoError(t, err)
		assert.Equal(t, "Iowa", rec.DisplayName)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := ds.Lookup("TX")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestForVisualization(t *testing.T) {
	set := testSet(t)
	ds, err := Build([]domain.ConsolidatedRecord{
		testRecord("TX", ptr(70), 0.75),
		testRecord("GU", nil, 0),
	}, nil, set)
	require.NoError(t, err)

	viz := ds.ForVisualization()
	require.Len(t, viz, 2)

	// Identifiers use the exact canonical vocabulary, same order as All.
	assert.Equal(t, "GU", viz[0].JurisdictionID)
	assert.Equal(t, "Guam", viz[0].DisplayName)
	assert.Nil(t, viz[0].Score)
	assert.Equal(t, domain.TierLimited, viz[0].DataTier)

	assert.Equal(t, "TX", viz[1].JurisdictionID)
	require.NotNil(t, viz[1].Score)
	assert.InDelta(t, 70, *viz[1].Score, 1e-9)
	assert.Equal(t, domain.TierRich, viz[1].DataTier)

	for _, v := range viz {
		assert.True(t, set.Contains(v.JurisdictionID))
	}
}

func TestUnresolved(t *testing.T) {
	set := testSet(t)
	unresolved := []domain.Unresolved{
		{SourceFile: "Midwest.csv", RawText: "Atlantis", Stage: domain.StageCanonicalize, Reason: "unknown jurisdiction"},
	}

	ds, err := Build(nil, unresolved, set)
	require.NoError(t, err)

	got := ds.Unresolved()
	require.Len(t, got, 1)
	assert.Equal(t, "Atlantis", got[0].RawText)

	// The returned slice is a copy; mutating it cannot corrupt the dataset.
	got[0].RawText = "mutated"
	assert.Equal(t, "Atlantis", ds.Unresolved()[0].RawText)
}

func TestRestore(t *testing.T) {
	builtAt := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	records := []domain.ConsolidatedRecord{
		{JurisdictionID: "TX", DisplayName: "Texas", Fields: map[string]domain.FieldValue{}},
		{JurisdictionID: "CA", DisplayName: "California", Fields: map[string]domain.FieldValue{}},
	}

	ds, err := Restore(records, nil, builtAt)
	require.NoError(t, err)

	assert.Equal(t, builtAt, ds.BuiltAt())
	all := ds.All()
	assert.Equal(t, "California", all[0].DisplayName)

	_, err = Restore(append(records, records[0]), nil, builtAt)
	require.Error(t, err)
}
