package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

func TestNewBundle_LoadsEmbeddedLanguages(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"en", "es"}, Languages(bundle))
}

func TestLabels(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)

	tests := []struct {
		name  string
		langs []string
		id    string
		want  string
	}{
		{"english", []string{"en"}, domain.LabelTotalCases, "Total Cases"},
		{"spanish", []string{"es"}, domain.LabelTotalCases, "Casos totales"},
		{"regional spanish", []string{"es-MX"}, domain.LabelPerOneMillion, "Por millón"},
		{"preference order", []string{"fr", "es"}, domain.LabelLastUpdated, "Última actualización"},
		{"unknown language uses default", []string{"de"}, domain.LabelTotalDeaths, "Total Deaths"},
		{"unknown id", []string{"en"}, "NoSuchLabel", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewLabels(bundle, tt.langs...).Label(tt.id))
		})
	}
}

func TestLabels_DriveSummary(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)

	rows := domain.BuildSummary(nil, NewLabels(bundle, "es"))
	require.Len(t, rows, 6)
	assert.Equal(t, "Casos totales", rows[0].Primary.Label)
	assert.Equal(t, "Por millón", rows[0].Secondary.Label)
	assert.Equal(t, "Casos recuperados", rows[5].Primary.Label)
}

func TestLabels_Nil(t *testing.T) {
	var l *Labels
	assert.Empty(t, l.Label(domain.LabelTotalCases))
}

func TestLabels_Language(t *testing.T) {
	bundle, err := NewBundle()
	require.NoError(t, err)

	assert.Equal(t, "es", NewLabels(bundle, "es-MX,es;q=0.9", "en").Language())
	assert.Equal(t, "en", NewLabels(bundle, "de", "en").Language())

	var l *Labels
	assert.Empty(t, l.Language())
}
