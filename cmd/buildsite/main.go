// Command buildsite runs one render cycle and writes the static map site:
// index.html, countries.geojson, markers.json and dashboard.json.
//
// Usage:
//
//	go run ./cmd/buildsite -out public
//
// Saved API responses can replace the live fetch:
//
//	go run ./cmd/buildsite -out public \
//	  -countries testdata/countries.json \
//	  -all testdata/all.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/covid-map-service/internal/adapter/diseasesh"
	"github.com/couchcryptid/covid-map-service/internal/config"
	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/locale"
	"github.com/couchcryptid/covid-map-service/internal/observability"
	"github.com/couchcryptid/covid-map-service/internal/site"
	"github.com/couchcryptid/covid-map-service/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "public", "output directory")
	countriesFile := flag.String("countries", "", "saved /countries response to build from instead of the live API")
	allFile := flag.String("all", "", "saved /all response to build from instead of the live API")
	flag.Parse()

	if (*countriesFile == "") != (*allFile == "") {
		flag.Usage()
		return fmt.Errorf("-countries and -all must be given together")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var fetcher tracker.Fetcher
	if *countriesFile != "" {
		fetcher = fileFetcher{countries: *countriesFile, aggregate: *allFile}
		logger.Info("building from saved responses", "countries", *countriesFile, "all", *allFile)
	} else {
		fetcher = diseasesh.NewClient(cfg.StatsBaseURL, metrics, logger)
	}

	bundle, err := locale.NewBundle()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t := tracker.New(fetcher, cfg.DisplayLocation, logger, metrics)
	snap := t.Render(ctx, locale.NewLabels(bundle, cfg.DisplayLanguage))

	// Static pages cannot locate the viewer; the browser flies to the
	// configured center.
	view := domain.BuildMapView(ctx, nil, "", cfg.Map, logger)

	if err := site.WriteSite(*outDir, snap, view, cfg.DisplayLanguage); err != nil {
		return err
	}

	log.Printf("wrote %s: %d features, %d dropped, no_data=%t",
		*outDir, len(snap.Features.Features), len(snap.Dropped), snap.NoData)
	return nil
}

// fileFetcher serves saved API responses.
type fileFetcher struct {
	countries string
	aggregate string
}

func (f fileFetcher) FetchCountries(_ context.Context) (domain.CountryBatch, error) {
	body, err := os.ReadFile(f.countries)
	if err != nil {
		return domain.CountryBatch{}, err
	}
	return domain.ParseCountries(body)
}

func (f fileFetcher) FetchAggregate(_ context.Context, _ domain.Scope) (*domain.AggregateRecord, error) {
	body, err := os.ReadFile(f.aggregate)
	if err != nil {
		return nil, err
	}
	return domain.ParseAggregate(body)
}
