package site

import (
	"encoding/json"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/nav"
)

// Page is a document resolved for a requested locale together with the
// navigation shell of that locale.
type Page struct {
	Locale         string         `json:"locale"`
	ResolvedLocale string         `json:"resolvedLocale"`
	FallbackUsed   bool           `json:"fallbackUsed"`
	Href           string         `json:"href"`
	Document       *DocumentBody  `json:"document"`
	Navigation     nav.Navigation `json:"navigation"`
}

// ResolvePage finds slug in a locale, falling back to the default locale
// when the locale has no such document. The boolean is false when neither
// has it.
func (s *Service) ResolvePage(localeID string, slug []string) (*Page, bool, error) {
	doc, ok, err := s.ReadDocument(localeID, slug)
	if err != nil {
		return nil, false, err
	}
	resolved := localeID
	fallback := false
	if !ok {
		if s.registry.IsDefault(localeID) {
			return nil, false, nil
		}
		def := s.registry.Default().ID
		doc, ok, err = s.ReadDocument(def, slug)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		resolved = def
		fallback = true
		s.rec.IncFallbackServed(localeID)
		slog.Debug("Serving default locale document",
			logfields.Locale(localeID),
			logfields.Slug(slug))
	}

	navigation, err := s.Navigation(localeID, slug)
	if err != nil {
		return nil, false, err
	}
	return &Page{
		Locale:         localeID,
		ResolvedLocale: resolved,
		FallbackUsed:   fallback,
		Href:           s.Href(localeID, slug),
		Document:       doc,
		Navigation:     navigation,
	}, true, nil
}

// Version digests everything a page response is made of: the document
// fingerprint, the locales involved and the navigation shell. It changes
// when another document alters the sidebar.
func (p *Page) Version() (string, error) {
	shell, err := json.Marshal(p.Navigation)
	if err != nil {
		return "", err
	}
	return docs.SetHash(map[string]string{
		"locale":     p.Locale,
		"resolved":   p.ResolvedLocale,
		"document":   p.Document.Fingerprint,
		"navigation": string(shell),
	}), nil
}

// Navigation builds the navigation groups of a locale for the page at slug.
func (s *Service) Navigation(localeID string, slug []string) (nav.Navigation, error) {
	items, err := s.Sidebar(localeID)
	if err != nil {
		return nav.Navigation{}, err
	}
	defaultItems, err := s.SidebarFor(localeID, s.registry.Default().ID)
	if err != nil {
		return nav.Navigation{}, err
	}
	return nav.BuildNavigationGroups(nav.GroupsInput{
		Items:        items,
		DefaultItems: defaultItems,
		Strings:      s.strings(localeID),
		CurrentSlug:  slug,
		Sections:     s.opts.Sections,
		APISegment:   s.opts.APISegment,
		LocaleRoot:   s.Root(localeID),
	}), nil
}
