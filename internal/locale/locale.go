// Package locale models the configured content locales and the default
// locale that acts as the fallback for structure and untranslated pages.
package locale

import (
	"fmt"

	"golang.org/x/text/language"

	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Locale is one configured content locale.
type Locale struct {
	ID    string
	Label string
	// Dir is the absolute content root.
	Dir string
	Tag language.Tag
	// ChangelogNotice is prepended to the changelog for non-default locales.
	ChangelogNotice string
}

// Registry holds the configured locales. It is immutable after construction.
type Registry struct {
	locales []Locale
	byID    map[string]int
	matcher language.Matcher
}

// NewRegistry builds a registry. The default locale is moved to the front;
// the remaining locales keep their given order.
func NewRegistry(defaultID string, locales []Locale) (*Registry, error) {
	r := &Registry{byID: make(map[string]int, len(locales))}

	def := -1
	for i, l := range locales {
		if l.ID == defaultID {
			def = i
			break
		}
	}
	if def < 0 {
		return nil, foundationerrors.ConfigError(fmt.Sprintf("default locale %q is not configured", defaultID)).
			WithLocale(defaultID).
			Build()
	}

	ordered := make([]Locale, 0, len(locales))
	ordered = append(ordered, locales[def])
	for i, l := range locales {
		if i != def {
			ordered = append(ordered, l)
		}
	}

	tags := make([]language.Tag, 0, len(ordered))
	for i, l := range ordered {
		if _, dup := r.byID[l.ID]; dup {
			return nil, foundationerrors.ConfigError(fmt.Sprintf("duplicate locale %q", l.ID)).
				WithLocale(l.ID).
				Build()
		}
		if l.Tag == language.Und {
			tag, err := language.Parse(l.ID)
			if err != nil {
				return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid locale tag").
					Fatal().
					WithLocale(l.ID).
					Build()
			}
			ordered[i].Tag = tag
		}
		if ordered[i].Label == "" {
			ordered[i].Label = l.ID
		}
		r.byID[l.ID] = i
		tags = append(tags, ordered[i].Tag)
	}
	r.locales = ordered
	r.matcher = language.NewMatcher(tags)
	return r, nil
}

// Default returns the default locale.
func (r *Registry) Default() Locale { return r.locales[0] }

// Get looks up a locale by ID.
func (r *Registry) Get(id string) (Locale, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Locale{}, false
	}
	return r.locales[i], true
}

// All returns every locale, default first.
func (r *Registry) All() []Locale {
	out := make([]Locale, len(r.locales))
	copy(out, r.locales)
	return out
}

// IDs returns every locale ID, default first.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.locales))
	for i, l := range r.locales {
		ids[i] = l.ID
	}
	return ids
}

// IsDefault reports whether id names the default locale.
func (r *Registry) IsDefault(id string) bool { return r.locales[0].ID == id }

// Prefix is the route prefix of a locale: "" for the default locale and
// "/<id>" for every other one.
func (r *Registry) Prefix(id string) string {
	if r.IsDefault(id) {
		return ""
	}
	return "/" + id
}

// Match picks the best locale for an Accept-Language header value, falling
// back to the default locale.
func (r *Registry) Match(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.Default()
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(r.locales) {
		return r.Default()
	}
	return r.locales[idx]
}
