package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/covid-map-service/internal/adapter/diseasesh"
	httpadapter "github.com/couchcryptid/covid-map-service/internal/adapter/http"
	"github.com/couchcryptid/covid-map-service/internal/adapter/ipgeo"
	kafkaadapter "github.com/couchcryptid/covid-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/covid-map-service/internal/config"
	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/locale"
	"github.com/couchcryptid/covid-map-service/internal/observability"
	"github.com/couchcryptid/covid-map-service/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	bundle, err := locale.NewBundle()
	if err != nil {
		logger.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	stats := diseasesh.NewClient(cfg.StatsBaseURL, metrics, logger)

	// Viewer geolocation (feature-flagged via GEOLOCATION_ENABLED).
	var geo domain.Geolocator
	if cfg.GeolocationEnabled {
		client := ipgeo.NewClient(cfg.GeolocationURL, cfg.GeolocationTimeout, metrics, logger)
		geo = client
		if cfg.GeolocationCacheSize > 0 {
			geo = ipgeo.NewCachedGeolocator(client, cfg.GeolocationCacheSize, cfg.GeolocationCacheTTL)
		}
		metrics.GeolocationEnabled.Set(1)
		logger.Info("viewer geolocation enabled",
			"url", cfg.GeolocationURL,
			"timeout", cfg.GeolocationTimeout,
			"cache_size", cfg.GeolocationCacheSize,
		)
	} else {
		logger.Info("viewer geolocation disabled, using fallback center",
			"lat", cfg.Map.Center.Lat, "lng", cfg.Map.Center.Lng)
	}

	// Snapshot publishing (feature-flagged via KAFKA_ENABLED).
	var publishers []tracker.Publisher
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		publishers = append(publishers, publisher)
		logger.Info("snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	t := tracker.New(stats, cfg.DisplayLocation, logger, metrics, publishers...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, t, httpadapter.Options{
		Map:        cfg.Map,
		Geolocator: geo,
		Bundle:     bundle,
		Language:   cfg.DisplayLanguage,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Warm-up cycle so /readyz reflects upstream availability before the
	// first page view.
	g.Go(func() error {
		t.RenderMap(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
