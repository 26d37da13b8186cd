package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

func TestSerializeSnapshot(t *testing.T) {
	now := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := domain.Snapshot{
		CycleID:     "6f1c2a9e-0000-4000-8000-000000000001",
		GeneratedAt: now,
		NoData:      true,
		Features:    domain.EmptyFeatureCollection(),
		Dashboard:   domain.BuildDashboard(nil, nil, time.UTC),
	}

	msg, err := serializeSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, []byte(snap.CycleID), msg.Key)
	assert.Equal(t, now, msg.Time)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "cycle_id", msg.Headers[0].Key)
	assert.Equal(t, []byte(snap.CycleID), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, "no_data", msg.Headers[2].Key)
	assert.Equal(t, []byte("true"), msg.Headers[2].Value)

	var decoded struct {
		CycleID  string                   `json:"cycle_id"`
		NoData   bool                     `json:"no_data"`
		Features domain.FeatureCollection `json:"features"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, snap.CycleID, decoded.CycleID)
	assert.True(t, decoded.NoData)
	assert.Equal(t, domain.TypeFeatureCollection, decoded.Features.Type)
	assert.Empty(t, decoded.Features.Features)
}

func TestSerializeSnapshot_Features(t *testing.T) {
	batch, err := domain.ParseCountries([]byte(`[{"country":"X","countryInfo":{"lat":1,"long":2},"cases":2500}]`))
	require.NoError(t, err)

	snap := domain.Snapshot{
		CycleID:  "c-1",
		Features: domain.BuildFeatureCollection(batch.Records),
	}
	msg, err := serializeSnapshot(snap)
	require.NoError(t, err)

	assert.Contains(t, string(msg.Value), `"coordinates":[2,1]`)
	assert.Contains(t, string(msg.Value), `"no_data":false`)
}
