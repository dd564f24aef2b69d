package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawatlas/disaster-law-etl/internal/dataset"
	"github.com/lawatlas/disaster-law-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	builtAt := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	score := 62.5
	rec := dataset.VizRecord{
		JurisdictionID: "TX",
		DisplayName:    "Texas",
		Region:         "Southwest",
		Score:          &score,
		Completeness:   0.7273,
		DataTier:       domain.TierRich,
	}

	msg, err := serializeToMessage(rec, builtAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("TX"), msg.Key)

	var decoded dataset.VizRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, rec.JurisdictionID, decoded.JurisdictionID)
	assert.Equal(t, rec.DisplayName, decoded.DisplayName)
	require.NotNil(t, decoded.Score)
	assert.InDelta(t, score, *decoded.Score, 1e-9)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2026-08-26T12:00:00Z", headers["built_at"])
	assert.Equal(t, domain.TierRich, headers["data_tier"])
	assert.Equal(t, "0.7273", headers["completeness"])
}

func TestSerializeToMessageNilScore(t *testing.T) {
	msg, err := serializeToMessage(dataset.VizRecord{
		JurisdictionID: "GU",
		DisplayName:    "Guam",
		Completeness:   0.1,
		DataTier:       domain.TierLimited,
	}, time.Now())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(msg.Value, &raw))
	assert.Equal(t, "null", string(raw["score"]))
}
