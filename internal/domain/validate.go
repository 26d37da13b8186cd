package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotArray means a collection response was not a JSON array.
	ErrNotArray = errors.New("response is not an array")
	// ErrNoData means a collection response was an empty array.
	ErrNoData = errors.New("response contains no records")
	// ErrNotObject means an aggregate response was not a JSON object.
	ErrNotObject = errors.New("response is not an object")
)

// DroppedRecord identifies a malformed element of a collection response.
type DroppedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// CountryBatch is the validated form of a collection response. Records keep
// the input order; Dropped lists the elements that failed validation.
type CountryBatch struct {
	Records []CountryRecord
	Dropped []DroppedRecord
}

// Total is the number of elements in the original response.
func (b CountryBatch) Total() int { return len(b.Records) + len(b.Dropped) }

// ParseCountries validates a collection response body. A body that is not a
// JSON array fails with ErrNotArray and an empty array with ErrNoData.
// Elements that are not objects, or lack numeric countryInfo.lat and
// countryInfo.long, are dropped rather than failing the batch.
func ParseCountries(body []byte) (CountryBatch, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return CountryBatch{}, ErrNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return CountryBatch{}, fmt.Errorf("%w: %v", ErrNotArray, err)
	}
	if len(elems) == 0 {
		return CountryBatch{}, ErrNoData
	}

	batch := CountryBatch{Records: make([]CountryRecord, 0, len(elems))}
	for i, elem := range elems {
		rec, err := parseCountry(elem)
		if err != nil {
			batch.Dropped = append(batch.Dropped, DroppedRecord{Index: i, Reason: err.Error()})
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func parseCountry(elem json.RawMessage) (CountryRecord, error) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 || elem[0] != '{' {
		return CountryRecord{}, errors.New("element is not an object")
	}

	var rec CountryRecord
	if err := json.Unmarshal(elem, &rec); err != nil {
		return CountryRecord{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.CountryInfo.Lat == nil || rec.CountryInfo.Long == nil {
		return CountryRecord{}, fmt.Errorf("record %q has no countryInfo.lat/long", rec.Country)
	}

	props, err := decodeProperties(elem)
	if err != nil {
		return CountryRecord{}, err
	}
	rec.Properties = props
	return rec, nil
}

// decodeProperties copies the top-level fields of an object without
// converting numbers, so the properties bag matches the upstream payload.
func decodeProperties(elem []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.UseNumber()

	var props map[string]any
	if err := dec.Decode(&props); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return props, nil
}

// ParseAggregate validates an aggregate response body.
func ParseAggregate(body []byte) (*AggregateRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	var agg AggregateRecord
	if err := json.Unmarshal(trimmed, &agg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	return &agg, nil
}
