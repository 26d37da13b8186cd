package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// StatsBaseURL is the disease.sh API root; scope paths are appended to it.
	StatsBaseURL string

	Map domain.MapConfig

	// Display settings for dates and dashboard labels.
	DisplayLocation *time.Location
	DisplayLanguage string

	// Viewer geolocation (ip-api compatible endpoint).
	GeolocationEnabled bool
	GeolocationURL     string
	GeolocationTimeout time.Duration
	// Successful lookups are cached per address.
	GeolocationCacheSize int
	GeolocationCacheTTL  time.Duration

	// Snapshot publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	m, err := loadMapConfig()
	if err != nil {
		return nil, err
	}

	tz := sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	geoTimeout, err := parseDuration("GEOLOCATION_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}

	geoCacheSize, err := parseCacheSize("GEOLOCATION_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	geoCacheTTL, err := parseDuration("GEOLOCATION_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StatsBaseURL: sharedcfg.EnvOrDefault("STATS_BASE_URL", "https://disease.sh/v3/covid-19"),

		Map: m,

		DisplayLocation: loc,
		DisplayLanguage: sharedcfg.EnvOrDefault("DISPLAY_LANGUAGE", "en"),

		GeolocationEnabled: os.Getenv("GEOLOCATION_ENABLED") == "true",
		GeolocationURL:     sharedcfg.EnvOrDefault("GEOLOCATION_URL", "http://ip-api.com"),
		GeolocationTimeout: geoTimeout,

		GeolocationCacheSize: geoCacheSize,
		GeolocationCacheTTL:  geoCacheTTL,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "covid-map-snapshots"),
	}

	if _, err := url.ParseRequestURI(cfg.StatsBaseURL); err != nil {
		return nil, errors.New("invalid STATS_BASE_URL")
	}
	if cfg.GeolocationEnabled {
		if _, err := url.ParseRequestURI(cfg.GeolocationURL); err != nil {
			return nil, errors.New("invalid GEOLOCATION_URL")
		}
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func loadMapConfig() (domain.MapConfig, error) {
	m := domain.DefaultMapConfig()

	lat, err := parseFloat("MAP_CENTER_LAT", m.Center.Lat)
	if err != nil {
		return m, err
	}
	if lat < -90 || lat > 90 {
		return m, errors.New("invalid MAP_CENTER_LAT: out of range")
	}
	lng, err := parseFloat("MAP_CENTER_LNG", m.Center.Lng)
	if err != nil {
		return m, err
	}
	if lng < -180 || lng > 180 {
		return m, errors.New("invalid MAP_CENTER_LNG: out of range")
	}
	m.Center = domain.LatLng{Lat: lat, Lng: lng}

	if m.DefaultZoom, err = parseZoom("MAP_DEFAULT_ZOOM", m.DefaultZoom); err != nil {
		return m, err
	}
	if m.FlyZoom, err = parseZoom("MAP_FLY_ZOOM", m.FlyZoom); err != nil {
		return m, err
	}
	if m.FlyDelay, err = parseDuration("MAP_FLY_DELAY", m.FlyDelay.String()); err != nil {
		return m, err
	}
	m.BaseMap = sharedcfg.EnvOrDefault("MAP_BASE_LAYER", m.BaseMap)
	return m, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("invalid %s: not a number", key)
	}
	return v, nil
}

// parseZoom accepts the Leaflet zoom range 0-18.
func parseZoom(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 18 {
		return 0, fmt.Errorf("invalid %s: must be an integer between 0 and 18", key)
	}
	return v, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100000 {
		return 0, fmt.Errorf("invalid %s: must be 0-100000", key)
	}
	return n, nil
}
