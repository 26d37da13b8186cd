package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

// sseAnimator delivers a fly-to as a server-sent event.
type sseAnimator struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (a *sseAnimator) FlyTo(_ context.Context, center domain.LatLng, zoom int) error {
	data, err := json.Marshal(struct {
		Center domain.LatLng `json:"center"`
		Zoom   int           `json:"zoom"`
	}{center, zoom})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(a.w, "event: flyto\ndata: %s\n\n", data); err != nil {
		return err
	}
	return a.rc.Flush()
}

// handleViewEvents holds the stream open for the fly-to delay and then sends
// a single "flyto" event. A client that disconnects first gets nothing.
func (s *Server) handleViewEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plan := domain.PlanFlyTo(ctx, s.opts.Geolocator, clientIP(r), s.opts.Map, s.logger)

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout when the delay is long.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Debug("event stream not flushable", "error", err)
	}

	done := domain.ScheduleFlyTo(ctx, domain.Clock(), plan, &sseAnimator{w: w, rc: rc})
	if err, ok := <-done; ok && err != nil {
		s.logger.Debug("fly-to event not delivered", "error", err)
	}
}
