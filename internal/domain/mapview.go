package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// LatLng is a WGS-84 coordinate in map order.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapConfig holds the map presentation settings.
type MapConfig struct {
	// Center is the initial view and the fallback when the viewer cannot be located.
	Center      LatLng        `json:"center"`
	DefaultZoom int           `json:"default_zoom"`
	FlyZoom     int           `json:"fly_zoom"`
	FlyDelay    time.Duration `json:"-"`
	BaseMap     string        `json:"base_map"`
}

// DefaultMapConfig centers on Washington, DC.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Center:      LatLng{Lat: 38.9072, Lng: -77.0369},
		DefaultZoom: 2,
		FlyZoom:     10,
		FlyDelay:    2 * time.Second,
		BaseMap:     "OpenStreetMap",
	}
}

// Geolocator finds the approximate position of a viewer.
type Geolocator interface {
	Locate(ctx context.Context, ip string) (LatLng, error)
}

// FlyToPlan tells the map where to animate once markers are attached.
type FlyToPlan struct {
	Center  LatLng `json:"center"`
	Zoom    int    `json:"zoom"`
	DelayMS int64  `json:"delay_ms"`
	// Located is false when the fallback center was used.
	Located bool `json:"located"`
}

// ResolveCenter returns the viewer's location, or the fallback when
// geolocation is disabled (nil) or fails. Failures are not errors.
func ResolveCenter(ctx context.Context, geo Geolocator, ip string, fallback LatLng, logger *slog.Logger) (LatLng, bool) {
	if geo == nil || ip == "" {
		return fallback, false
	}
	pos, err := geo.Locate(ctx, ip)
	if err != nil {
		logger.Debug("geolocation failed, using fallback center", "ip", ip, "error", err)
		return fallback, false
	}
	return pos, true
}

// PlanFlyTo resolves the target center and pairs it with the configured zoom
// and delay.
func PlanFlyTo(ctx context.Context, geo Geolocator, ip string, cfg MapConfig, logger *slog.Logger) FlyToPlan {
	center, located := ResolveCenter(ctx, geo, ip, cfg.Center, logger)
	return FlyToPlan{
		Center:  center,
		Zoom:    cfg.FlyZoom,
		DelayMS: cfg.FlyDelay.Milliseconds(),
		Located: located,
	}
}

// Animator moves the map view.
type Animator interface {
	FlyTo(ctx context.Context, center LatLng, zoom int) error
}

// ScheduleFlyTo waits for the plan's delay on clk and then animates. The
// returned channel yields the animator's result and is closed afterwards.
// If ctx ends first the animation is dropped and the channel is closed
// without a value.
func ScheduleFlyTo(ctx context.Context, clk clockwork.Clock, plan FlyToPlan, a Animator) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			return
		case <-clk.After(time.Duration(plan.DelayMS) * time.Millisecond):
		}
		done <- a.FlyTo(ctx, plan.Center, plan.Zoom)
	}()
	return done
}

// MapView is everything the page needs to set up the map for one viewer.
type MapView struct {
	Map   MapConfig `json:"map"`
	FlyTo FlyToPlan `json:"fly_to"`
}

// BuildMapView plans the fly-to for the viewer at ip.
func BuildMapView(ctx context.Context, geo Geolocator, ip string, cfg MapConfig, logger *slog.Logger) MapView {
	return MapView{Map: cfg, FlyTo: PlanFlyTo(ctx, geo, ip, cfg, logger)}
}
