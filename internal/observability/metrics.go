package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Render cycle metrics.
	RenderCycles   *prometheus.CounterVec // labels: outcome={ok,no_data}
	CycleDuration  prometheus.Histogram
	FeaturesBuilt  prometheus.Gauge
	RecordsDropped prometheus.Counter

	// Upstream statistics API metrics.
	FetchRequests *prometheus.CounterVec   // labels: scope={all,countries,country,continent}, outcome={success,error,invalid}
	FetchDuration *prometheus.HistogramVec // labels: scope

	// Geolocation metrics.
	GeolocationRequests *prometheus.CounterVec // labels: outcome={success,error}
	GeolocationEnabled  prometheus.Gauge

	// Snapshot publishing metrics.
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RenderCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covidmap",
			Name:      "render_cycles_total",
			Help:      "Render cycles by outcome.",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covidmap",
			Name:      "render_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-transform-render cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FeaturesBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covidmap",
			Name:      "features_built",
			Help:      "Number of map features in the most recent cycle.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covidmap",
			Name:      "records_dropped_total",
			Help:      "Country records rejected by schema validation.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covidmap",
			Name:      "fetch_requests_total",
			Help:      "Statistics API requests by scope and outcome.",
		}, []string{"scope", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "covidmap",
			Name:      "fetch_duration_seconds",
			Help:      "Statistics API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"scope"}),
		GeolocationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covidmap",
			Name:      "geolocation_requests_total",
			Help:      "Viewer geolocation lookups by outcome.",
		}, []string{"outcome"}),
		GeolocationEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covidmap",
			Name:      "geolocation_enabled",
			Help:      "1 when viewer geolocation is enabled, 0 otherwise.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covidmap",
			Name:      "snapshots_published_total",
			Help:      "Snapshots written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "covidmap",
			Name:      "publish_errors_total",
			Help:      "Snapshot publish failures.",
		}),
	}

	prometheus.MustRegister(
		m.RenderCycles,
		m.CycleDuration,
		m.FeaturesBuilt,
		m.RecordsDropped,
		m.FetchRequests,
		m.FetchDuration,
		m.GeolocationRequests,
		m.GeolocationEnabled,
		m.SnapshotsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RenderCycles:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covidmap", Name: "render_cycles_total"}, []string{"outcome"}),
		CycleDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "covidmap", Name: "render_cycle_duration_seconds"}),
		FeaturesBuilt:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "covidmap", Name: "features_built"}),
		RecordsDropped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covidmap", Name: "records_dropped_total"}),
		FetchRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covidmap", Name: "fetch_requests_total"}, []string{"scope", "outcome"}),
		FetchDuration:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "covidmap", Name: "fetch_duration_seconds"}, []string{"scope"}),
		GeolocationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "covidmap", Name: "geolocation_requests_total"}, []string{"outcome"}),
		GeolocationEnabled:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "covidmap", Name: "geolocation_enabled"}),
		SnapshotsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covidmap", Name: "snapshots_published_total"}),
		PublishErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "covidmap", Name: "publish_errors_total"}),
	}
}
