package domain

import "time"

// Label message ids. The English text in defaultLabels is used whenever a
// Labels implementation has no translation.
const (
	LabelTotalCases     = "TotalCases"
	LabelTotalDeaths    = "TotalDeaths"
	LabelTotalTests     = "TotalTests"
	LabelActiveCases    = "ActiveCases"
	LabelCriticalCases  = "CriticalCases"
	LabelRecoveredCases = "RecoveredCases"
	LabelPerOneMillion  = "PerOneMillion"
	LabelLastUpdated    = "LastUpdated"
)

var defaultLabels = map[string]string{
	LabelTotalCases:     "Total Cases",
	LabelTotalDeaths:    "Total Deaths",
	LabelTotalTests:     "Total Tests",
	LabelActiveCases:    "Active Cases",
	LabelCriticalCases:  "Critical Cases",
	LabelRecoveredCases: "Recovered Cases",
	LabelPerOneMillion:  "Per 1 Million",
	LabelLastUpdated:    "Last Updated",
}

// Labels resolves a label message id to display text. An empty result falls
// back to English.
type Labels interface {
	Label(id string) string
}

// Stat is one label/value pair on the dashboard.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummaryRow is one dashboard tile.
type SummaryRow struct {
	Primary   Stat  `json:"primary"`
	Secondary *Stat `json:"secondary,omitempty"`
}

// Dashboard is the handoff to the page layout.
type Dashboard struct {
	Rows             []SummaryRow `json:"rows"`
	LastUpdatedLabel string       `json:"last_updated_label"`
	LastUpdated      string       `json:"last_updated"`
}

// summaryField picks one statistic out of an aggregate.
type summaryField func(*AggregateRecord) Count

type summarySpec struct {
	label      string
	primary    summaryField
	perMillion summaryField
}

// summarySpecs fixes the row order.
var summarySpecs = []summarySpec{
	{LabelTotalCases, func(a *AggregateRecord) Count { return a.Cases }, func(a *AggregateRecord) Count { return a.CasesPerOneMillion }},
	{LabelTotalDeaths, func(a *AggregateRecord) Count { return a.Deaths }, func(a *AggregateRecord) Count { return a.DeathsPerOneMillion }},
	{LabelTotalTests, func(a *AggregateRecord) Count { return a.Tests }, func(a *AggregateRecord) Count { return a.TestsPerOneMillion }},
	{LabelActiveCases, func(a *AggregateRecord) Count { return a.Active }, nil},
	{LabelCriticalCases, func(a *AggregateRecord) Count { return a.Critical }, nil},
	{LabelRecoveredCases, func(a *AggregateRecord) Count { return a.Recovered }, nil},
}

// BuildSummary returns the six dashboard rows. A nil aggregate renders every
// value as Placeholder.
func BuildSummary(agg *AggregateRecord, labels Labels) []SummaryRow {
	rows := make([]SummaryRow, 0, len(summarySpecs))
	for _, def := range summarySpecs {
		row := SummaryRow{
			Primary: Stat{Label: label(labels, def.label), Value: statValue(agg, def.primary)},
		}
		if def.perMillion != nil {
			row.Secondary = &Stat{
				Label: label(labels, LabelPerOneMillion),
				Value: statValue(agg, def.perMillion),
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildDashboard returns the summary rows and the formatted update time.
func BuildDashboard(agg *AggregateRecord, labels Labels, loc *time.Location) Dashboard {
	d := Dashboard{
		Rows:             BuildSummary(agg, labels),
		LastUpdatedLabel: label(labels, LabelLastUpdated),
		LastUpdated:      Placeholder,
	}
	if agg != nil {
		d.LastUpdated = FriendlyDate(agg.Updated, loc)
	}
	return d
}

func statValue(agg *AggregateRecord, field summaryField) string {
	if agg == nil {
		return Placeholder
	}
	return Commafy(field(agg))
}

func label(labels Labels, id string) string {
	if labels != nil {
		if s := labels.Label(id); s != "" {
			return s
		}
	}
	return defaultLabels[id]
}
