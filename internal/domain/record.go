package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Placeholder is rendered wherever a statistic is absent.
const Placeholder = "-"

// Count is an optional numeric statistic as reported by the upstream API.
// The zero value is an absent count. Any JSON number is accepted (the API
// does not promise integers); null or a non-numeric value decodes as absent.
type Count struct {
	value float64
	valid bool
}

// NewCount returns a present count.
func NewCount(v float64) Count {
	return Count{value: v, valid: true}
}

// Value returns the count and whether it is present.
func (c Count) Value() (float64, bool) {
	return c.value, c.valid
}

// Valid reports whether the count is present.
func (c Count) Valid() bool { return c.valid }

// IsZero reports whether the count is absent, so `omitzero` drops it.
func (c Count) IsZero() bool { return !c.valid }

// Int64 returns the integer part of the count, or 0 when absent.
func (c Count) Int64() int64 {
	if !c.valid {
		return 0
	}
	return int64(math.Trunc(c.value))
}

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var f float64
	if bytes.Equal(b, []byte("null")) || json.Unmarshal(b, &f) != nil {
		*c = Count{}
		return nil
	}
	*c = Count{value: f, valid: true}
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, c.value, 'f', -1, 64), nil
}

// CountryInfo is the nested location block of a country record. Lat and Long
// are pointers so a missing coordinate can be told apart from 0.
type CountryInfo struct {
	ID   Count    `json:"_id"`
	ISO2 string   `json:"iso2"`
	ISO3 string   `json:"iso3"`
	Lat  *float64 `json:"lat"`
	Long *float64 `json:"long"`
	Flag string   `json:"flag"`
}

// CountryRecord is one country's statistics from the collection endpoint.
type CountryRecord struct {
	Country     string      `json:"country"`
	CountryInfo CountryInfo `json:"countryInfo"`
	Continent   string      `json:"continent"`
	Updated     Count       `json:"updated"`

	Cases          Count `json:"cases"`
	TodayCases     Count `json:"todayCases"`
	Deaths         Count `json:"deaths"`
	TodayDeaths    Count `json:"todayDeaths"`
	Recovered      Count `json:"recovered"`
	TodayRecovered Count `json:"todayRecovered"`
	Active         Count `json:"active"`
	Critical       Count `json:"critical"`
	Tests          Count `json:"tests"`
	Population     Count `json:"population"`

	CasesPerOneMillion     Count `json:"casesPerOneMillion"`
	DeathsPerOneMillion    Count `json:"deathsPerOneMillion"`
	TestsPerOneMillion     Count `json:"testsPerOneMillion"`
	ActivePerOneMillion    Count `json:"activePerOneMillion"`
	RecoveredPerOneMillion Count `json:"recoveredPerOneMillion"`
	CriticalPerOneMillion  Count `json:"criticalPerOneMillion"`

	// Properties holds every top-level field of the upstream object verbatim,
	// numbers kept as json.Number.
	Properties map[string]any `json:"-"`
}

// AggregateRecord is a world, continent or single-country total.
type AggregateRecord struct {
	Country   string `json:"country,omitempty"`
	Continent string `json:"continent,omitempty"`
	Updated   Count  `json:"updated,omitzero"`

	Cases             Count `json:"cases,omitzero"`
	Deaths            Count `json:"deaths,omitzero"`
	Recovered         Count `json:"recovered,omitzero"`
	Active            Count `json:"active,omitzero"`
	Critical          Count `json:"critical,omitzero"`
	Tests             Count `json:"tests,omitzero"`
	Population        Count `json:"population,omitzero"`
	AffectedCountries Count `json:"affectedCountries,omitzero"`

	CasesPerOneMillion  Count `json:"casesPerOneMillion,omitzero"`
	DeathsPerOneMillion Count `json:"deathsPerOneMillion,omitzero"`
	TestsPerOneMillion  Count `json:"testsPerOneMillion,omitzero"`
}
