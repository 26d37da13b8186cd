package domain

// GeoJSON object type names.
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
)

// FeatureCollection is a GeoJSON FeatureCollection of country points.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Point feature whose properties are the upstream
// country object.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`

	record CountryRecord
}

// Geometry is a GeoJSON point. Coordinates are [longitude, latitude].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Record returns the typed record the feature was built from.
func (f Feature) Record() CountryRecord { return f.record }

// LatLng returns the point in map order.
func (f Feature) LatLng() LatLng {
	if len(f.Geometry.Coordinates) != 2 {
		return LatLng{}
	}
	return LatLng{Lat: f.Geometry.Coordinates[1], Lng: f.Geometry.Coordinates[0]}
}

// EmptyFeatureCollection encodes as {"type":"FeatureCollection","features":[]}.
func EmptyFeatureCollection() FeatureCollection {
	return FeatureCollection{Type: TypeFeatureCollection, Features: []Feature{}}
}

// BuildFeatureCollection projects each record into a point feature. Output
// order matches input order; nothing is merged or sorted.
func BuildFeatureCollection(records []CountryRecord) FeatureCollection {
	fc := FeatureCollection{
		Type:     TypeFeatureCollection,
		Features: make([]Feature, 0, len(records)),
	}
	for _, rec := range records {
		fc.Features = append(fc.Features, BuildFeature(rec))
	}
	return fc
}

// BuildFeature projects one record. The record must have passed
// ParseCountries, which guarantees both coordinates are set.
func BuildFeature(rec CountryRecord) Feature {
	var lat, lng float64
	if rec.CountryInfo.Lat != nil {
		lat = *rec.CountryInfo.Lat
	}
	if rec.CountryInfo.Long != nil {
		lng = *rec.CountryInfo.Long
	}

	props := make(map[string]any, len(rec.Properties))
	for k, v := range rec.Properties {
		props[k] = v
	}

	return Feature{
		Type: TypeFeature,
		Geometry: Geometry{
			Type:        TypePoint,
			Coordinates: []float64{lng, lat},
		},
		Properties: props,
		record:     rec,
	}
}
