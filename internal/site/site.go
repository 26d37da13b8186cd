// Package site renders the map page and writes the static site artifacts.
package site

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html.tmpl"))

// Artifact file names written by WriteSite.
const (
	IndexFile     = "index.html"
	FeaturesFile  = "countries.geojson"
	MarkersFile   = "markers.json"
	DashboardFile = "dashboard.json"
)

// baseLayers maps base map names to tile URL templates.
var baseLayers = map[string]string{
	"OpenStreetMap": "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	"Stamen Toner":  "https://tiles.stadiamaps.com/tiles/stamen_toner/{z}/{x}/{y}.png",
	"CartoDB":       "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
}

// TileURL returns the tile template for a base map name, falling back to
// OpenStreetMap for unknown names.
func TileURL(baseMap string) string {
	if u, ok := baseLayers[baseMap]; ok {
		return u
	}
	return baseLayers["OpenStreetMap"]
}

// Page is the template input for the map page.
type Page struct {
	Title     string
	Lang      string
	Dashboard domain.Dashboard
	Markers   []domain.Marker
	View      domain.MapView
	// Live pages receive the fly-to over /api/view/events; static pages
	// schedule it in the browser from View.FlyTo.
	Live bool
}

// NewPage assembles a page from a render cycle and a map view.
func NewPage(snap domain.Snapshot, view domain.MapView, lang string, live bool) Page {
	markers := snap.Markers
	if markers == nil {
		markers = []domain.Marker{}
	}
	return Page{
		Title:     "COVID-19 Map",
		Lang:      lang,
		Dashboard: snap.Dashboard,
		Markers:   markers,
		View:      view,
		Live:      live,
	}
}

// RenderPage writes the HTML page.
func RenderPage(w io.Writer, p Page) error {
	data := struct {
		Page
		TileURL string
	}{p, TileURL(p.View.Map.BaseMap)}
	if data.Lang == "" {
		data.Lang = "en"
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// WriteSite writes the page and the JSON artifacts of one render cycle to
// dir, creating it if needed.
func WriteSite(dir string, snap domain.Snapshot, view domain.MapView, lang string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	page := NewPage(snap, view, lang, false)
	var buf bytes.Buffer
	if err := RenderPage(&buf, page); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", IndexFile, err)
	}

	artifacts := []struct {
		name string
		v    any
	}{
		{FeaturesFile, snap.Features},
		{MarkersFile, page.Markers},
		{DashboardFile, snap.Dashboard},
	}
	for _, a := range artifacts {
		if err := writeJSON(filepath.Join(dir, a.name), a.v); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
