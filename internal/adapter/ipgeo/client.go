package ipgeo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/observability"
)

var (
	// ErrNotRoutable is returned for loopback, private and otherwise
	// unlocatable addresses. No request is made for them.
	ErrNotRoutable = errors.New("address is not publicly routable")
	// ErrLookupFailed is returned when the service answers with status "fail".
	ErrLookupFailed = errors.New("geolocation lookup failed")
)

// Client implements domain.Geolocator against an ip-api compatible
// endpoint (GET {base}/json/{ip}).
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a geolocation client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Locate returns the approximate coordinates of ip.
func (c *Client) Locate(ctx context.Context, ip string) (domain.LatLng, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("parse ip %q: %w", ip, err)
	}
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return domain.LatLng{}, fmt.Errorf("%w: %s", ErrNotRoutable, addr)
	}

	pos, err := c.lookup(ctx, addr.Unmap().String())
	if err != nil {
		c.metrics.GeolocationRequests.WithLabelValues("error").Inc()
		return domain.LatLng{}, err
	}
	c.metrics.GeolocationRequests.WithLabelValues("success").Inc()
	return pos, nil
}

func (c *Client) lookup(ctx context.Context, ip string) (domain.LatLng, error) {
	u := fmt.Sprintf("%s/json/%s", c.baseURL, url.PathEscape(ip))
	params := url.Values{"fields": {"status,message,lat,lon"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.LatLng{}, fmt.Errorf("geolocation API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.LatLng{}, fmt.Errorf("decode response: %w", err)
	}
	if r.Status != "success" {
		return domain.LatLng{}, fmt.Errorf("%w: %s", ErrLookupFailed, r.Message)
	}
	if r.Lat == nil || r.Lon == nil {
		return domain.LatLng{}, fmt.Errorf("%w: response has no coordinates", ErrLookupFailed)
	}
	return domain.LatLng{Lat: *r.Lat, Lng: *r.Lon}, nil
}

// ip-api response fields.

type response struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}
