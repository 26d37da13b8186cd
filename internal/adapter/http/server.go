package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/tracker"
)

// Renderer runs render cycles. *tracker.Tracker implements it.
type Renderer interface {
	sharedobs.ReadinessChecker
	RenderMap(ctx context.Context) tracker.MapLayer
	RenderDashboard(ctx context.Context, labels domain.Labels) domain.Dashboard
	Render(ctx context.Context, labels domain.Labels) domain.Snapshot
}

// Options configures the map routes.
type Options struct {
	Map domain.MapConfig
	// Geolocator locates viewers for the fly-to; nil always uses Map.Center.
	Geolocator domain.Geolocator
	// Bundle supplies dashboard label translations; nil means English.
	Bundle *i18n.Bundle
	// Language is the configured display language, used after the
	// viewer's Accept-Language preferences.
	Language string
}

// Server exposes the map page, the map API, and health, readiness and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	renderer   Renderer
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the probe, metrics, page and API routes.
func NewServer(addr string, renderer Renderer, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		renderer: renderer,
		opts:     opts,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(renderer))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/countries", s.handleCountries)
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/view/events", s.handleViewEvents)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
