package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeature(country string, cases, deaths, recovered, updated Count) Feature {
	lat, lng := 41.9, 12.5
	return BuildFeature(CountryRecord{
		Country:     country,
		CountryInfo: CountryInfo{Lat: &lat, Long: &lng},
		Cases:       cases,
		Deaths:      deaths,
		Recovered:   recovered,
		Updated:     updated,
	})
}

func TestBuildMarker(t *testing.T) {
	f := testFeature("Italy", NewCount(2107166), NewCount(74159), NewCount(1463111), NewCount(newYear2021))

	m, err := BuildMarker(f, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "Italy", m.Country)
	assert.Equal(t, 41.9, m.Lat)
	assert.Equal(t, 12.5, m.Lng)
	assert.Equal(t, "2m+", m.Badge)
	assert.Equal(t, "2,107,166", m.Confirmed)
	assert.Equal(t, "74,159", m.Deaths)
	assert.Equal(t, "1,463,111", m.Recovered)
	assert.Equal(t, "1/1/2021, 12:00:00 AM", m.LastUpdate)

	assert.Contains(t, m.HTML, "<h2>Italy</h2>")
	assert.Contains(t, m.HTML, "<strong>Confirmed: </strong>2,107,166")
	assert.Contains(t, m.HTML, "<strong>Last Update: </strong>1/1/2021, 12:00:00 AM")
	assert.Contains(t, m.HTML, "2m+")
	assert.NotContains(t, m.HTML, "&#43;")
}

func TestBuildMarker_OmitsMissingUpdate(t *testing.T) {
	f := testFeature("Nowhere", NewCount(10), Count{}, Count{}, Count{})

	m, err := BuildMarker(f, time.UTC)
	require.NoError(t, err)

	assert.Empty(t, m.LastUpdate)
	assert.NotContains(t, m.HTML, "Last Update")
	assert.Equal(t, Placeholder, m.Deaths)
	assert.Equal(t, "10", m.Badge)
}

func TestBuildMarker_EscapesCountryName(t *testing.T) {
	f := testFeature(`<script>alert(1)</script>`, NewCount(1), NewCount(0), NewCount(0), Count{})

	m, err := BuildMarker(f, time.UTC)
	require.NoError(t, err)

	assert.NotContains(t, m.HTML, "<script>")
	assert.Contains(t, m.HTML, "&lt;script&gt;")
}

func TestBuildMarkers_OnePerFeature(t *testing.T) {
	fc := FeatureCollection{
		Type: TypeFeatureCollection,
		Features: []Feature{
			testFeature("A", NewCount(1), Count{}, Count{}, Count{}),
			testFeature("B", NewCount(2000), Count{}, Count{}, Count{}),
		},
	}

	markers, err := BuildMarkers(fc, nil)
	require.NoError(t, err)
	require.Len(t, markers, 2)
	assert.Equal(t, "A", markers[0].Country)
	assert.Equal(t, "2k+", markers[1].Badge)
}

func TestBadgeHTML(t *testing.T) {
	assert.Equal(t, "12m+", string(badgeHTML("12m+")))
	assert.Equal(t, Placeholder, string(badgeHTML(Placeholder)))
	assert.Equal(t, "&lt;b&gt;", string(badgeHTML("<b>")))
}
