package domain

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// markerTooltip is the div-icon body shown on the map for one country.
var markerTooltip = template.Must(template.New("marker").Funcs(template.FuncMap{
	"badge": badgeHTML,
}).Parse(`<span class="icon-marker">
  <span class="icon-marker-tooltip">
    <h2>{{.Country}}</h2>
    <ul>
      <li><strong>Confirmed: </strong>{{.Confirmed}}</li>
      <li><strong>Deaths: </strong>{{.Deaths}}</li>
      <li><strong>Recovered: </strong>{{.Recovered}}</li>
      {{- if .LastUpdate}}
      <li><strong>Last Update: </strong>{{.LastUpdate}}</li>
      {{- end}}
    </ul>
  </span>
  {{badge .Badge}}
</span>`))

// badgeHTML passes CaseBadge output through unescaped so "+" stays literal.
// Anything else is escaped as usual.
func badgeHTML(s string) template.HTML {
	for _, r := range s {
		if !strings.ContainsRune("0123456789.-km+", r) {
			return template.HTML(template.HTMLEscapeString(s))
		}
	}
	return template.HTML(s)
}

// Marker is the renderable form of one feature.
type Marker struct {
	Country    string  `json:"country"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Badge      string  `json:"badge"`
	Confirmed  string  `json:"confirmed"`
	Deaths     string  `json:"deaths"`
	Recovered  string  `json:"recovered"`
	LastUpdate string  `json:"last_update,omitempty"`
	HTML       string  `json:"html"`
}

// BuildMarker renders the marker for a feature. Timestamps are shown in loc.
func BuildMarker(f Feature, loc *time.Location) (Marker, error) {
	rec := f.Record()
	pos := f.LatLng()

	m := Marker{
		Country:    rec.Country,
		Lat:        pos.Lat,
		Lng:        pos.Lng,
		Badge:      CaseBadge(rec.Cases),
		Confirmed:  Commafy(rec.Cases),
		Deaths:     Commafy(rec.Deaths),
		Recovered:  Commafy(rec.Recovered),
		LastUpdate: LocaleDateTime(rec.Updated, loc),
	}

	var sb strings.Builder
	if err := markerTooltip.Execute(&sb, m); err != nil {
		return Marker{}, fmt.Errorf("render marker %q: %w", rec.Country, err)
	}
	m.HTML = sb.String()
	return m, nil
}

// BuildMarkers renders one marker per feature, in feature order.
func BuildMarkers(fc FeatureCollection, loc *time.Location) ([]Marker, error) {
	markers := make([]Marker, 0, len(fc.Features))
	for _, f := range fc.Features {
		m, err := BuildMarker(f, loc)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, nil
}
