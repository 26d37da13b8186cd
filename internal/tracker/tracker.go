// Package tracker runs render cycles: fetch the statistics, transform them
// into map features and dashboard rows, and hand the result to the caller
// and any configured publishers.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/observability"
)

// Fetcher retrieves validated statistics from the upstream API.
type Fetcher interface {
	FetchCountries(ctx context.Context) (domain.CountryBatch, error)
	FetchAggregate(ctx context.Context, scope domain.Scope) (*domain.AggregateRecord, error)
}

// Publisher receives every completed snapshot.
type Publisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// MapLayer is the country half of a render cycle.
type MapLayer struct {
	Features domain.FeatureCollection
	Markers  []domain.Marker
	Dropped  []domain.DroppedRecord
	// NoData is set when the country fetch failed or returned nothing usable.
	NoData bool
}

// Tracker orchestrates fetch, transform and render. It holds no statistics
// between cycles.
type Tracker struct {
	fetcher    Fetcher
	publishers []Publisher
	aggregate  domain.Scope
	location   *time.Location
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// New creates a Tracker. Dates are rendered in loc (UTC when nil).
func New(f Fetcher, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics, publishers ...Publisher) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{
		fetcher:    f,
		publishers: publishers,
		aggregate:  domain.ScopeAll,
		location:   loc,
		logger:     logger,
		metrics:    metrics,
	}
}

// Location is the time zone used for rendered dates.
func (t *Tracker) Location() *time.Location { return t.location }

// CheckReadiness reports the most recent cycle: nil when it produced at
// least one feature. A later failed fetch makes the tracker unready again.
func (t *Tracker) CheckReadiness(_ context.Context) error {
	if !t.ready.Load() {
		return errors.New("last render cycle produced no map features")
	}
	return nil
}

// RenderMap fetches the country collection and builds features and markers.
// Fetch or validation failures are logged and yield an empty layer.
func (t *Tracker) RenderMap(ctx context.Context) MapLayer {
	batch, err := t.fetcher.FetchCountries(ctx)
	if err != nil {
		t.logger.Error("failed to fetch country statistics", "error", err)
		t.ready.Store(false)
		return MapLayer{Features: domain.EmptyFeatureCollection(), Markers: []domain.Marker{}, NoData: true}
	}

	for _, d := range batch.Dropped {
		t.logger.Warn("dropped malformed country record", "index", d.Index, "reason", d.Reason)
	}
	t.metrics.RecordsDropped.Add(float64(len(batch.Dropped)))

	fc := domain.BuildFeatureCollection(batch.Records)
	markers, err := domain.BuildMarkers(fc, t.location)
	if err != nil {
		t.logger.Error("failed to render markers", "error", err)
		markers = []domain.Marker{}
	}

	t.metrics.FeaturesBuilt.Set(float64(len(fc.Features)))
	t.ready.Store(len(fc.Features) > 0)

	return MapLayer{
		Features: fc,
		Markers:  markers,
		Dropped:  batch.Dropped,
		NoData:   len(fc.Features) == 0,
	}
}

// RenderDashboard fetches the world aggregate and builds the summary rows.
// A failed fetch renders every value as the placeholder.
func (t *Tracker) RenderDashboard(ctx context.Context, labels domain.Labels) domain.Dashboard {
	agg, err := t.fetcher.FetchAggregate(ctx, t.aggregate)
	if err != nil {
		t.logger.Error("failed to fetch aggregate statistics", "scope", t.aggregate.String(), "error", err)
		agg = nil
	}
	return domain.BuildDashboard(agg, labels, t.location)
}

// Render runs one full cycle. The country fetch completes before the
// aggregate fetch starts; only one request is in flight at a time.
func (t *Tracker) Render(ctx context.Context, labels domain.Labels) domain.Snapshot {
	start := domain.Clock().Now()
	cycleID := uuid.NewString()
	logger := t.logger.With("cycle_id", cycleID)

	layer := t.RenderMap(ctx)
	dash := t.RenderDashboard(ctx, labels)

	snap := domain.Snapshot{
		CycleID:     cycleID,
		GeneratedAt: domain.Now(),
		NoData:      layer.NoData,
		Features:    layer.Features,
		Markers:     layer.Markers,
		Dashboard:   dash,
		Dropped:     layer.Dropped,
	}

	outcome := "ok"
	if snap.NoData {
		outcome = "no_data"
	}
	t.metrics.RenderCycles.WithLabelValues(outcome).Inc()
	t.metrics.CycleDuration.Observe(domain.Clock().Since(start).Seconds())

	t.publish(ctx, snap, logger)

	logger.Info("render cycle complete",
		"features", len(snap.Features.Features),
		"dropped", len(snap.Dropped),
		"no_data", snap.NoData,
	)
	return snap
}

func (t *Tracker) publish(ctx context.Context, snap domain.Snapshot, logger *slog.Logger) {
	for _, p := range t.publishers {
		if err := p.Publish(ctx, snap); err != nil {
			logger.Warn("snapshot publish failed", "error", err)
		}
	}
}
