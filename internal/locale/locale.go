// Package locale loads the dashboard label translations.
package locale

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

//go:embed messages/*.yaml
var messageFiles embed.FS

// NewBundle returns a bundle with every embedded message file loaded.
// English is the default language.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	paths, err := fs.Glob(messageFiles, "messages/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		buf, err := messageFiles.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		if _, err := bundle.ParseMessageFileBytes(buf, p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	return bundle, nil
}

// Labels implements domain.Labels on top of a go-i18n localizer.
type Labels struct {
	loc *i18n.Localizer
}

// NewLabels returns labels for the given languages in preference order, for
// example a configured language followed by an Accept-Language header.
func NewLabels(bundle *i18n.Bundle, langs ...string) *Labels {
	return &Labels{loc: i18n.NewLocalizer(bundle, langs...)}
}

// Label returns the translation for id, or "" when none exists so the
// caller can fall back to its own default.
func (l *Labels) Label(id string) string {
	if l == nil {
		return ""
	}
	s, err := l.loc.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return ""
	}
	return s
}

// Language reports the tag the localizer resolved to, for example "es" for
// an "es-MX" preference. It returns "" for nil labels.
func (l *Labels) Language() string {
	if l == nil {
		return ""
	}
	_, tag, err := l.loc.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: domain.LabelTotalCases})
	if err != nil {
		return ""
	}
	return tag.String()
}

// Languages lists the tags that have an embedded message file.
func Languages(bundle *i18n.Bundle) []string {
	tags := bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
