package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidScope is returned for a scope that cannot be turned into a request.
var ErrInvalidScope = errors.New("invalid scope")

// ScopeKind selects the upstream endpoint family.
type ScopeKind string

const (
	KindAll       ScopeKind = "all"
	KindCountries ScopeKind = "countries"
	KindCountry   ScopeKind = "country"
	KindContinent ScopeKind = "continent"
)

// Scope describes what a fetch asks for. Only KindCountries returns a
// collection; every other kind returns a single aggregate object.
type Scope struct {
	Kind ScopeKind
	Name string
}

var (
	// ScopeAll is the world aggregate.
	ScopeAll = Scope{Kind: KindAll}
	// ScopeCountries is the per-country collection.
	ScopeCountries = Scope{Kind: KindCountries}
)

// CountryScope is the aggregate for one country (name, ISO code or id).
func CountryScope(name string) Scope {
	return Scope{Kind: KindCountry, Name: name}
}

// ContinentScope is the aggregate for one continent.
func ContinentScope(name string) Scope {
	return Scope{Kind: KindContinent, Name: name}
}

// IsCollection reports whether the endpoint returns an array of records.
func (s Scope) IsCollection() bool { return s.Kind == KindCountries }

// Validate checks that the scope is well-formed.
func (s Scope) Validate() error {
	switch s.Kind {
	case KindAll, KindCountries:
		if s.Name != "" {
			return fmt.Errorf("%w: %s scope takes no name", ErrInvalidScope, s.Kind)
		}
		return nil
	case KindCountry, KindContinent:
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("%w: %s scope requires a name", ErrInvalidScope, s.Kind)
		}
		if strings.Contains(name, "/") {
			return fmt.Errorf("%w: name %q contains '/'", ErrInvalidScope, s.Name)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScope, s.Kind)
	}
}

// Path returns the endpoint path relative to the API base, e.g. "/countries".
func (s Scope) Path() (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	switch s.Kind {
	case KindAll:
		return "/all", nil
	case KindCountries:
		return "/countries", nil
	case KindCountry:
		return "/countries/" + url.PathEscape(strings.TrimSpace(s.Name)), nil
	default:
		return "/continents/" + url.PathEscape(strings.TrimSpace(s.Name)), nil
	}
}

// String is used as the metrics and log label.
func (s Scope) String() string {
	if s.Name == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.Name
}
