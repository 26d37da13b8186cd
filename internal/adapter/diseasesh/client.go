package diseasesh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/observability"
)

// DefaultBaseURL is the public disease.sh COVID-19 API root.
const DefaultBaseURL = "https://disease.sh/v3/covid-19"

// ErrFetchFailed wraps every transport failure and non-2xx response.
var ErrFetchFailed = errors.New("stats fetch failed")

// Client fetches raw statistics from a disease.sh compatible API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a statistics client. The HTTP client has no timeout of
// its own; requests are bounded only by the caller's context.
func NewClient(baseURL string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch performs one GET for scope and returns the response body unchanged.
func (c *Client) Fetch(ctx context.Context, scope domain.Scope) ([]byte, error) {
	path, err := scope.Path()
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(string(scope.Kind), "invalid").Inc()
		return nil, err
	}

	start := time.Now()
	body, err := c.get(ctx, c.baseURL+path)
	c.metrics.FetchDuration.WithLabelValues(string(scope.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(string(scope.Kind), "error").Inc()
		c.logger.Warn("stats fetch failed", "scope", scope.String(), "error", err)
		return nil, err
	}

	c.metrics.FetchRequests.WithLabelValues(string(scope.Kind), "success").Inc()
	c.logger.Debug("stats fetched", "scope", scope.String(), "bytes", len(body))
	return body, nil
}

// FetchCountries fetches and validates the per-country collection.
func (c *Client) FetchCountries(ctx context.Context) (domain.CountryBatch, error) {
	body, err := c.Fetch(ctx, domain.ScopeCountries)
	if err != nil {
		return domain.CountryBatch{}, err
	}
	batch, err := domain.ParseCountries(body)
	if err != nil {
		return domain.CountryBatch{}, fmt.Errorf("parse countries: %w", err)
	}
	return batch, nil
}

// FetchAggregate fetches and validates a single aggregate (world, country or
// continent).
func (c *Client) FetchAggregate(ctx context.Context, scope domain.Scope) (*domain.AggregateRecord, error) {
	if scope.IsCollection() {
		return nil, fmt.Errorf("%w: %s is a collection", domain.ErrInvalidScope, scope)
	}
	body, err := c.Fetch(ctx, scope)
	if err != nil {
		return nil, err
	}
	agg, err := domain.ParseAggregate(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s aggregate: %w", scope, err)
	}
	return agg, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	return body, nil
}
