package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/locale"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func newTestService(t *testing.T) *site.Service {
	t.Helper()
	svc, _ := newTestServiceAt(t)
	return svc
}

func newTestServiceAt(t *testing.T) (*site.Service, string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"docs/index.md":         "# Home\n\nWelcome.\n",
		"docs/guides/setup.md":  "# Setup\n\nSee [home](../index.md).\n\n## Install\n",
		"docs/api/foo.md":       "# Foo\n",
		"docs/i18n/zh/index.md": "# 首页\n",
	}
	testutil.WriteTree(t, root, files)
	registry, err := locale.NewRegistry("en", []locale.Locale{
		{ID: "en", Label: "English", Dir: filepath.Join(root, "docs")},
		{ID: "zh", Label: "中文", Dir: filepath.Join(root, "docs", "i18n", "zh")},
	})
	require.NoError(t, err)
	return site.NewService(registry, site.Options{}), root
}

type stubSearcher struct {
	gotLocale string
	gotLimit  int
}

func (s *stubSearcher) Search(_ context.Context, localeID, q string, limit int) (search.Results, error) {
	s.gotLocale, s.gotLimit = localeID, limit
	return search.Results{Query: q, Total: 1, Hits: []search.Hit{{Locale: localeID, Title: "Setup"}}}, nil
}

func newMux(h *APIHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/locales", h.HandleLocales)
	mux.HandleFunc("GET /api/search", h.HandleSearch)
	mux.HandleFunc("GET /api/{locale}/sidebar", h.HandleSidebar)
	mux.HandleFunc("GET /api/{locale}/navigation", h.HandleNavigation)
	mux.HandleFunc("GET /api/{locale}/paths", h.HandlePaths)
	mux.HandleFunc("GET /api/{locale}/docs", h.HandleDoc)
	mux.HandleFunc("GET /api/{locale}/docs/{slug...}", h.HandleDoc)
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	return mux
}

func serve(mux http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHandleLocales(t *testing.T) {
	mux := newMux(NewAPIHandlers(newTestService(t), nil, 0))
	rec := serve(mux, http.MethodGet, "/api/locales", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[responses.LocalesResponse](t, rec)
	assert.Equal(t, "en", resp.Default)
	require.Len(t, resp.Locales, 2)
	assert.Equal(t, responses.LocaleInfo{ID: "zh", Label: "中文", Tag: "zh", Root: "/zh"}, resp.Locales[1])
	assert.True(t, resp.Locales[0].Default)
}

func TestHandleDoc(t *testing.T) {
	mux := newMux(NewAPIHandlers(newTestService(t), nil, 0))

	rec := serve(mux, http.MethodGet, "/api/en/docs/guides/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["html"], `href="/"`)
	assert.Contains(t, body["html"], `id="install"`)
	assert.Equal(t, false, body["fallbackUsed"])

	rec = serve(mux, http.MethodGet, "/api/en/docs/guides/setup", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandleDocETagFollowsNavigation(t *testing.T) {
	svc, root := newTestServiceAt(t)
	mux := newMux(NewAPIHandlers(svc, nil, 0))

	rec := serve(mux, http.MethodGet, "/api/en/docs/guides/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")

	testutil.WriteTree(t, root, map[string]string{"docs/guides/deploy.md": "# Deploy\n"})
	svc.Reset()

	rec = serve(mux, http.MethodGet, "/api/en/docs/guides/setup", http.Header{"If-None-Match": {etag}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
	assert.Contains(t, rec.Body.String(), "/guides/deploy")
}

func TestHandleDocHomeAndFallback(t *testing.T) {
	mux := newMux(NewAPIHandlers(newTestService(t), nil, 0))

	rec := serve(mux, http.MethodGet, "/api/zh/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Language"))

	rec = serve(mux, http.MethodGet, "/api/zh/docs/guides/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["fallbackUsed"])
	assert.Contains(t, body["html"], `href="/zh"`)
}

func TestHandleDocNotFound(t *testing.T) {
	mux := newMux(NewAPIHandlers(newTestService(t), nil, 0))

	rec := serve(mux, http.MethodGet, "/api/en/docs/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "document not found")

	rec = serve(mux, http.MethodGet, "/api/fr/docs/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown locale")
}

func TestHandlePaths(t *testing.T) {
	mux := newMux(NewAPIHandlers(newTestService(t), nil, 0))
	rec := serve(mux, http.MethodGet, "/api/zh/paths", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[responses.PathsResponse](t, rec)
	assert.Equal(t, "zh", resp.Locale)
	hrefs := map[string]bool{}
	for _, p := range resp.Paths {
		hrefs[p.Href] = p.Fallback
	}
	assert.Equal(t, map[string]bool{"/zh": false, "/zh/guides/setup": true, "/zh/api/foo": true}, hrefs)
}

func TestHandleSidebarAndNavigation(t *testing.T) {
	mux := newMux(NewAPIHandlers(newTestService(t), nil, 0))

	rec := serve(mux, http.MethodGet, "/api/en/sidebar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.NotEmpty(t, items)

	rec = serve(mux, http.MethodGet, "/api/en/navigation?slug=api/foo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"activeGroup"`)
}

func TestHandleSearch(t *testing.T) {
	svc := newTestService(t)

	rec := serve(newMux(NewAPIHandlers(svc, nil, 0)), http.MethodGet, "/api/search?q=setup", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	stub := &stubSearcher{}
	mux := newMux(NewAPIHandlers(svc, stub, 5))

	rec = serve(mux, http.MethodGet, "/api/search?q=setup&limit=50", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", stub.gotLocale)
	assert.Equal(t, 5, stub.gotLimit)
	resp := decode[responses.SearchResponse](t, rec)
	assert.Equal(t, "setup", resp.Query)
	assert.Len(t, resp.Hits, 1)

	rec = serve(mux, http.MethodGet, "/api/search?q=setup&locale=zh&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "zh", stub.gotLocale)
	assert.Equal(t, 2, stub.gotLimit)

	rec = serve(mux, http.MethodGet, "/api/search?q=x&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(mux, http.MethodGet, "/api/search?q=x&locale=fr", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRoot(t *testing.T) {
	mux := newMux(NewAPIHandlers(newTestService(t), nil, 0))

	rec := serve(mux, http.MethodGet, "/", http.Header{"Accept-Language": {"zh-CN,zh;q=0.9"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/zh", rec.Header().Get("Location"))
	assert.Equal(t, "Accept-Language", rec.Header().Get("Vary"))

	rec = serve(mux, http.MethodGet, "/", http.Header{"Accept-Language": {"en-US"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", decode[responses.LocaleInfo](t, rec).ID)
}

func TestHandleHealthCheck(t *testing.T) {
	h := NewMonitoringHandlers(fakeRuntime{start: time.Now().Add(-time.Minute)})
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[responses.HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 2, resp.Locales)
	assert.Equal(t, 3, resp.CachedDocuments)
	assert.True(t, resp.Search)
	assert.GreaterOrEqual(t, resp.Uptime, 60.0)
}

type fakeRuntime struct{ start time.Time }

func (f fakeRuntime) StartTime() time.Time { return f.start }
func (f fakeRuntime) Locales() int         { return 2 }
func (f fakeRuntime) CachedDocuments() int { return 3 }
func (f fakeRuntime) SearchEnabled() bool  { return true }
