// Command checkfeed checks a saved disease.sh /countries response (and
// optionally an /all response) against the map's data rules: schema
// validation, feature transform, marker rendering and dashboard rows.
//
// Usage:
//
//	go run ./cmd/checkfeed \
//	  -countries internal/domain/testdata/countries.json \
//	  -all testdata/all.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	countries := flag.String("countries", "", "path to a saved /countries response")
	all := flag.String("all", "", "path to a saved /all response (optional)")
	flag.Parse()

	if *countries == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *countries, *all); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, countriesPath, allPath string) int {
	fmt.Fprintln(out, "=== COVID-19 Feed Check ===")
	fmt.Fprintln(out)

	body, err := os.ReadFile(countriesPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read countries: %v\n", err)
		return 1
	}

	batch, schema := checkSchema(body)
	fc := domain.BuildFeatureCollection(batch.Records)

	phases := []*phase{
		schema,
		checkFeatures(batch, fc),
		checkMarkers(fc),
	}

	if allPath != "" {
		allBody, err := os.ReadFile(allPath)
		if err != nil {
			fmt.Fprintf(out, "FATAL: read aggregate: %v\n", err)
			return 1
		}
		phases = append(phases, checkDashboard(allBody))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d total, %d kept, %d dropped\n", batch.Total(), len(batch.Records), len(batch.Dropped))
	for _, d := range batch.Dropped {
		fmt.Fprintf(out, "  dropped [%d]: %s\n", d.Index, d.Reason)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(out, "\nCheck FAILED.")
	return 1
}

// ── Phase 1: Schema ──

func checkSchema(body []byte) (domain.CountryBatch, *phase) {
	p := &phase{name: "Phase 1: Schema (array of country objects)"}
	batch, err := domain.ParseCountries(body)
	if err != nil {
		p.errorf("%v", err)
		return batch, p
	}
	if len(batch.Records) == 0 {
		p.errorf("all %d records were dropped", batch.Total())
	}
	return batch, p
}

// ── Phase 2: Feature transform ──

func checkFeatures(batch domain.CountryBatch, fc domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 2: Features (count, order, coordinates)"}

	if fc.Type != domain.TypeFeatureCollection {
		p.errorf("collection type %q", fc.Type)
	}
	if len(fc.Features) != len(batch.Records) {
		p.errorf("feature count: expected %d, got %d", len(batch.Records), len(fc.Features))
		return p
	}

	for i, f := range fc.Features {
		rec := batch.Records[i]
		if f.Type != domain.TypeFeature || f.Geometry.Type != domain.TypePoint {
			p.errorf("feature %d: type %s/%s", i, f.Type, f.Geometry.Type)
		}
		want := []float64{*rec.CountryInfo.Long, *rec.CountryInfo.Lat}
		if len(f.Geometry.Coordinates) != 2 || f.Geometry.Coordinates[0] != want[0] || f.Geometry.Coordinates[1] != want[1] {
			p.errorf("feature %d (%s): coordinates %v, expected [long, lat] %v", i, rec.Country, f.Geometry.Coordinates, want)
		}
		if got, _ := f.Properties["country"].(string); got != rec.Country {
			p.errorf("feature %d: properties.country %q, expected %q", i, got, rec.Country)
		}
		for k := range rec.Properties {
			if _, ok := f.Properties[k]; !ok {
				p.errorf("feature %d (%s): property %q missing", i, rec.Country, k)
			}
		}
	}
	return p
}

// ── Phase 3: Markers ──

func checkMarkers(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 3: Markers (badge, tooltip)"}

	markers, err := domain.BuildMarkers(fc, time.UTC)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if len(markers) != len(fc.Features) {
		p.errorf("marker count: expected %d, got %d", len(fc.Features), len(markers))
		return p
	}
	for i, m := range markers {
		rec := fc.Features[i].Record()
		if want := domain.CaseBadge(rec.Cases); m.Badge != want {
			p.errorf("marker %d (%s): badge %q, expected %q", i, m.Country, m.Badge, want)
		}
		if m.Badge == "" {
			p.errorf("marker %d (%s): empty badge", i, m.Country)
		}
		if !strings.Contains(m.HTML, "<h2>") || !strings.Contains(m.HTML, m.Badge) {
			p.errorf("marker %d (%s): tooltip missing heading or badge", i, m.Country)
		}
	}
	return p
}

// ── Phase 4: Dashboard ──

func checkDashboard(body []byte) *phase {
	p := &phase{name: "Phase 4: Dashboard (six rows)"}

	agg, err := domain.ParseAggregate(body)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	dash := domain.BuildDashboard(agg, nil, time.UTC)
	if len(dash.Rows) != 6 {
		p.errorf("row count: expected 6, got %d", len(dash.Rows))
		return p
	}
	for i, r := range dash.Rows {
		if (i < 3) != (r.Secondary != nil) {
			p.errorf("row %d (%s): per-million value presence wrong", i, r.Primary.Label)
		}
		if r.Primary.Value == domain.Placeholder {
			p.errorf("row %d (%s): value missing", i, r.Primary.Label)
		}
	}
	if dash.LastUpdated == domain.Placeholder {
		p.errorf("updated timestamp missing")
	}
	return p
}
