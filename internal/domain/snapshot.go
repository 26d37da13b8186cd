package domain

import "time"

// Snapshot is the output of one render cycle: everything the map and the
// dashboard need, built from a single fetch of each endpoint.
type Snapshot struct {
	CycleID     string            `json:"cycle_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	NoData      bool              `json:"no_data"`
	Features    FeatureCollection `json:"features"`
	Markers     []Marker          `json:"markers"`
	Dashboard   Dashboard         `json:"dashboard"`
	Dropped     []DroppedRecord   `json:"dropped,omitempty"`
}
