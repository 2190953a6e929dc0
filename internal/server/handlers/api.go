package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Searcher answers search queries; *search.Live satisfies it.
type Searcher interface {
	Search(ctx context.Context, localeID, q string, limit int) (search.Results, error)
}

// APIHandlers serves locales, sidebars, paths, documents and search.
type APIHandlers struct {
	svc          *site.Service
	searcher     Searcher
	maxResults   int
	errorAdapter *errors.HTTPErrorAdapter
}

// NewAPIHandlers creates the API handlers. A nil searcher disables search.
func NewAPIHandlers(svc *site.Service, searcher Searcher, maxResults int) *APIHandlers {
	if maxResults <= 0 {
		maxResults = search.DefaultMaxResults
	}
	return &APIHandlers{
		svc:          svc,
		searcher:     searcher,
		maxResults:   maxResults,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errorAdapter.WriteErrorResponse(w, r, err)
}

func (h *APIHandlers) respond(w http.ResponseWriter, r *http.Request, v any) {
	if err := writeJSON(w, r, v); err != nil {
		h.fail(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to write response").Build())
	}
}

// requireLocale returns the {locale} path value when it is configured.
func (h *APIHandlers) requireLocale(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("locale")
	if _, ok := h.svc.Registry().Get(id); !ok {
		h.fail(w, r, errors.NotFoundError("unknown locale").WithLocale(id).Build())
		return "", false
	}
	return id, true
}

func (h *APIHandlers) localeInfo(id string) responses.LocaleInfo {
	loc, _ := h.svc.Registry().Get(id)
	return responses.LocaleInfo{
		ID:      loc.ID,
		Label:   loc.Label,
		Tag:     loc.Tag.String(),
		Root:    h.svc.Root(loc.ID),
		Default: h.svc.Registry().IsDefault(loc.ID),
	}
}

// HandleLocales handles GET /api/locales.
func (h *APIHandlers) HandleLocales(w http.ResponseWriter, r *http.Request) {
	reg := h.svc.Registry()
	resp := responses.LocalesResponse{Default: reg.Default().ID}
	for _, id := range reg.IDs() {
		resp.Locales = append(resp.Locales, h.localeInfo(id))
	}
	h.respond(w, r, resp)
}

// HandleSidebar handles GET /api/{locale}/sidebar.
func (h *APIHandlers) HandleSidebar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireLocale(w, r)
	if !ok {
		return
	}
	items, err := h.svc.Sidebar(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, items)
}

// HandleNavigation handles GET /api/{locale}/navigation?slug=a/b.
func (h *APIHandlers) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireLocale(w, r)
	if !ok {
		return
	}
	navigation, err := h.svc.Navigation(id, docs.ParseSlugKey(r.URL.Query().Get("slug")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, navigation)
}

// HandlePaths handles GET /api/{locale}/paths.
func (h *APIHandlers) HandlePaths(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireLocale(w, r)
	if !ok {
		return
	}
	slugs, fallback, err := h.svc.ServedSlugs(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := responses.PathsResponse{Locale: id, Paths: make([]responses.PathInfo, 0, len(slugs))}
	for i, s := range slugs {
		resp.Paths = append(resp.Paths, responses.PathInfo{Slug: s, Href: h.svc.Href(id, s), Fallback: fallback[i]})
	}
	h.respond(w, r, resp)
}

// HandleDoc handles GET /api/{locale}/docs/{slug...}. The ETag is the
// page version, covering the document and its navigation.
func (h *APIHandlers) HandleDoc(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireLocale(w, r)
	if !ok {
		return
	}
	slug := docs.ParseSlugKey(r.PathValue("slug"))
	page, found, err := h.svc.ResolvePage(id, slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !found {
		h.fail(w, r, errors.NotFoundError("document not found").
			WithLocale(id).
			WithSlug(slug).
			Build())
		return
	}

	version, err := page.Version()
	if err != nil {
		h.fail(w, r, errors.WrapError(err, errors.CategoryInternal, "page version").Build())
		return
	}
	etag := strconv.Quote(version)
	w.Header().Set("ETag", etag)
	if page.FallbackUsed {
		w.Header().Set("Content-Language", page.ResolvedLocale)
	}
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	html, err := h.svc.RenderHTML(id, page.Document)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, responses.DocResponse{Page: page, HTML: string(html)})
}

func etagMatches(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" || strings.TrimPrefix(part, "W/") == etag {
			return true
		}
	}
	return false
}

// HandleSearch handles GET /api/search?locale=&q=&limit=.
func (h *APIHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		h.fail(w, r, errors.SearchError("search is disabled").Build())
		return
	}
	q := r.URL.Query()
	id := q.Get("locale")
	if id == "" {
		id = h.svc.Registry().Default().ID
	}
	if _, ok := h.svc.Registry().Get(id); !ok {
		h.fail(w, r, errors.ValidationError("unknown locale").WithLocale(id).Build())
		return
	}
	limit := h.maxResults
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.fail(w, r, errors.ValidationError("limit must be a positive integer").WithContext("limit", v).Build())
			return
		}
		limit = min(n, h.maxResults)
	}

	res, err := h.searcher.Search(r.Context(), id, q.Get("q"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, responses.SearchResponse{Locale: id, Results: res})
}

// HandleRoot handles GET /: it redirects to the root of the locale that
// best matches Accept-Language. When that root is this very path the
// locale is described instead.
func (h *APIHandlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	loc := h.svc.Registry().Match(r.Header.Get("Accept-Language"))
	w.Header().Add("Vary", "Accept-Language")
	target := h.svc.Root(loc.ID)
	if target == r.URL.Path {
		h.respond(w, r, h.localeInfo(loc.ID))
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
