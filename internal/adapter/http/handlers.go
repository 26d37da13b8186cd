package http

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/locale"
	"github.com/couchcryptid/covid-map-service/internal/site"
)

const contentTypeGeoJSON = "application/geo+json"

// handlePage runs one render cycle and serves the map page. The fly-to is
// delivered separately over /api/view/events.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := s.opts.Language
	if tag := s.localize(r).Language(); tag != "" {
		lang = tag
	}

	snap := s.renderer.Render(ctx, s.labels(r))
	view := domain.BuildMapView(ctx, s.opts.Geolocator, clientIP(r), s.opts.Map, s.logger)

	var buf bytes.Buffer
	if err := site.RenderPage(&buf, site.NewPage(snap, view, lang, true)); err != nil {
		s.logger.Error("page render failed", "cycle_id", snap.CycleID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	layer := s.renderer.RenderMap(r.Context())
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(layer.Features); err != nil {
		s.logger.Warn("write feature collection failed", "error", err)
	}
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	layer := s.renderer.RenderMap(r.Context())
	sharedobs.WriteJSON(w, http.StatusOK, layer.Markers)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.renderer.RenderDashboard(r.Context(), s.labels(r)))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view := domain.BuildMapView(r.Context(), s.opts.Geolocator, clientIP(r), s.opts.Map, s.logger)
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

// labels prefers the viewer's Accept-Language over the configured language.
func (s *Server) labels(r *http.Request) domain.Labels {
	if l := s.localize(r); l != nil {
		return l
	}
	return nil
}

func (s *Server) localize(r *http.Request) *locale.Labels {
	if s.opts.Bundle == nil {
		return nil
	}
	return locale.NewLabels(s.opts.Bundle, r.Header.Get("Accept-Language"), s.opts.Language)
}

// clientIP is the peer address of the connection. Forwarding headers are
// not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
