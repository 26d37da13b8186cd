package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/covid-map-service/internal/adapter/http"
	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/locale"
	"github.com/couchcryptid/covid-map-service/internal/tracker"
)

// --- mocks ---

type mockRenderer struct {
	readyErr    error
	layer       tracker.MapLayer
	agg         *domain.AggregateRecord
	mapCalls    atomic.Int32
	renderCalls atomic.Int32
}

func (m *mockRenderer) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockRenderer) RenderMap(_ context.Context) tracker.MapLayer {
	m.mapCalls.Add(1)
	return m.layer
}

func (m *mockRenderer) RenderDashboard(_ context.Context, labels domain.Labels) domain.Dashboard {
	return domain.BuildDashboard(m.agg, labels, time.UTC)
}

func (m *mockRenderer) Render(ctx context.Context, labels domain.Labels) domain.Snapshot {
	m.renderCalls.Add(1)
	return domain.Snapshot{
		CycleID:   "cycle-1",
		Features:  m.layer.Features,
		Markers:   m.layer.Markers,
		NoData:    m.layer.NoData,
		Dashboard: m.RenderDashboard(ctx, labels),
	}
}

type mockGeolocator struct {
	pos domain.LatLng
	ip  string
}

func (m *mockGeolocator) Locate(_ context.Context, ip string) (domain.LatLng, error) {
	m.ip = ip
	return m.pos, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func italyLayer(t *testing.T) tracker.MapLayer {
	t.Helper()
	batch, err := domain.ParseCountries([]byte(`[{"country":"Italy","countryInfo":{"lat":42.8333,"long":12.8333},"cases":2107166}]`))
	require.NoError(t, err)
	fc := domain.BuildFeatureCollection(batch.Records)
	markers, err := domain.BuildMarkers(fc, time.UTC)
	require.NoError(t, err)
	return tracker.MapLayer{Features: fc, Markers: markers}
}

func newTestServer(r *mockRenderer, opts httpadapter.Options) *httpadapter.Server {
	if opts.Map == (domain.MapConfig{}) {
		opts.Map = domain.DefaultMapConfig()
	}
	return httpadapter.NewServer(":0", r, opts, discardLogger())
}

func get(t *testing.T, srv http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// --- probes ---

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockRenderer{}, httpadapter.Options{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockRenderer{}, httpadapter.Options{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&mockRenderer{readyErr: fmt.Errorf("not ready yet")}, httpadapter.Options{}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockRenderer{}, httpadapter.Options{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- map API ---

func TestCountriesReturnsGeoJSON(t *testing.T) {
	r := &mockRenderer{layer: italyLayer(t)}
	rec := get(t, newTestServer(r, httpadapter.Options{}), "/api/countries")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.Equal(t, []float64{12.8333, 42.8333}, fc.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Italy", fc.Features[0].Properties["country"])
	assert.Equal(t, int32(1), r.mapCalls.Load(), "one render cycle per request")
}

func TestCountriesNoData(t *testing.T) {
	r := &mockRenderer{layer: tracker.MapLayer{Features: domain.EmptyFeatureCollection(), NoData: true}}
	rec := get(t, newTestServer(r, httpadapter.Options{}), "/api/countries")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, rec.Body.String())
}

func TestMarkers(t *testing.T) {
	rec := get(t, newTestServer(&mockRenderer{layer: italyLayer(t)}, httpadapter.Options{}), "/api/markers")

	assert.Equal(t, http.StatusOK, rec.Code)
	var markers []domain.Marker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &markers))
	require.Len(t, markers, 1)
	assert.Equal(t, "2m+", markers[0].Badge)
	assert.Equal(t, "2,107,166", markers[0].Confirmed)
}

func TestDashboard(t *testing.T) {
	r := &mockRenderer{agg: &domain.AggregateRecord{Cases: domain.NewCount(31000000)}}
	rec := get(t, newTestServer(r, httpadapter.Options{}), "/api/dashboard")

	assert.Equal(t, http.StatusOK, rec.Code)
	var dash domain.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	require.Len(t, dash.Rows, 6)
	assert.Equal(t, "Total Cases", dash.Rows[0].Primary.Label)
	assert.Equal(t, "31,000,000", dash.Rows[0].Primary.Value)
	assert.Equal(t, domain.Placeholder, dash.LastUpdated)
}

func TestDashboard_AcceptLanguage(t *testing.T) {
	bundle, err := locale.NewBundle()
	require.NoError(t, err)

	srv := newTestServer(&mockRenderer{}, httpadapter.Options{Bundle: bundle, Language: "en"})

	rec := get(t, srv, "/api/dashboard", "Accept-Language", "es-ES,es;q=0.9")
	var dash domain.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, "Casos totales", dash.Rows[0].Primary.Label)

	rec = get(t, srv, "/api/dashboard")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, "Total Cases", dash.Rows[0].Primary.Label)
}

func TestView_Fallback(t *testing.T) {
	rec := get(t, newTestServer(&mockRenderer{}, httpadapter.Options{}), "/api/view")

	assert.Equal(t, http.StatusOK, rec.Code)
	var view domain.MapView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, domain.LatLng{Lat: 38.9072, Lng: -77.0369}, view.FlyTo.Center)
	assert.Equal(t, 10, view.FlyTo.Zoom)
	assert.Equal(t, int64(2000), view.FlyTo.DelayMS)
	assert.False(t, view.FlyTo.Located)
	assert.Equal(t, "OpenStreetMap", view.Map.BaseMap)
	assert.Equal(t, 2, view.Map.DefaultZoom)
}

func TestView_LocatesByRemoteAddr(t *testing.T) {
	geo := &mockGeolocator{pos: domain.LatLng{Lat: 51.5, Lng: -0.12}}
	srv := newTestServer(&mockRenderer{}, httpadapter.Options{Geolocator: geo})

	rec := get(t, srv, "/api/view", "X-Forwarded-For", "203.0.113.9")

	var view domain.MapView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.FlyTo.Located)
	assert.Equal(t, domain.LatLng{Lat: 51.5, Lng: -0.12}, view.FlyTo.Center)
	assert.Equal(t, "192.0.2.1", geo.ip, "httptest default peer address, not the forwarded header")
}

// --- page ---

func TestPage(t *testing.T) {
	r := &mockRenderer{layer: italyLayer(t), agg: &domain.AggregateRecord{Cases: domain.NewCount(31000000)}}
	rec := get(t, newTestServer(r, httpadapter.Options{}), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "31,000,000<strong>Total Cases</strong>")
	assert.Contains(t, body, `"country":"Italy"`)
	assert.Contains(t, body, "/api/view/events")
	assert.Equal(t, int32(1), r.renderCalls.Load())
}

func TestPage_LangFollowsLabels(t *testing.T) {
	bundle, err := locale.NewBundle()
	require.NoError(t, err)
	srv := newTestServer(&mockRenderer{}, httpadapter.Options{Bundle: bundle, Language: "en"})

	body := get(t, srv, "/", "Accept-Language", "es-ES,es;q=0.9").Body.String()
	assert.Contains(t, body, `<html lang="es">`)
	assert.Contains(t, body, "Casos totales")

	body = get(t, srv, "/").Body.String()
	assert.Contains(t, body, `<html lang="en">`)
}

func TestPage_UnknownPathIs404(t *testing.T) {
	rec := get(t, newTestServer(&mockRenderer{}, httpadapter.Options{}), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- fly-to events ---

func useFakeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	clk := clockwork.NewFakeClock()
	domain.SetClock(clk)
	t.Cleanup(func() { domain.SetClock(nil) })
	return clk
}

func TestViewEvents_SendsFlyToAfterDelay(t *testing.T) {
	clk := useFakeClock(t)
	srv := newTestServer(&mockRenderer{}, httpadapter.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/view/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	finished := make(chan struct{})
	go func() {
		srv.ServeHTTP(rec, req)
		close(finished)
	}()

	require.NoError(t, clk.BlockUntilContext(ctx, 1))
	clk.Advance(2 * time.Second)

	select {
	case <-finished:
	case <-ctx.Done():
		t.Fatal("handler did not finish")
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: flyto\n")
	assert.Contains(t, rec.Body.String(), `data: {"center":{"lat":38.9072,"lng":-77.0369},"zoom":10}`)
}

func TestViewEvents_DisconnectDropsFlyTo(t *testing.T) {
	clk := useFakeClock(t)
	srv := newTestServer(&mockRenderer{}, httpadapter.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/view/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	finished := make(chan struct{})
	go func() {
		srv.ServeHTTP(rec, req)
		close(finished)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clk.BlockUntilContext(waitCtx, 1))
	cancel()

	select {
	case <-finished:
	case <-waitCtx.Done():
		t.Fatal("handler did not finish")
	}
	assert.NotContains(t, rec.Body.String(), "event: flyto")
}
