package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/observability"
)

type routeRecorder struct {
	metrics.NoopRecorder
	mu     sync.Mutex
	routes []string
	codes  []int
}

func (r *routeRecorder) ObserveHTTPRequest(route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.codes = append(r.codes, status)
}

func newChain(rec metrics.Recorder) func(http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Chain(logger, derrors.NewHTTPErrorAdapter(logger), rec)
}

func TestChainRecordsRoutePattern(t *testing.T) {
	rec := &routeRecorder{}
	mux := http.NewServeMux()
	var seenID string
	mux.HandleFunc("GET /api/{locale}/sidebar", func(w http.ResponseWriter, r *http.Request) {
		seenID = observability.GetContext(r.Context()).RequestID
		w.WriteHeader(http.StatusTeapot)
	})
	h := newChain(rec)(mux)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/en/sidebar", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), seenID)
	assert.Equal(t, []string{"GET /api/{locale}/sidebar"}, rec.routes)
	assert.Equal(t, []int{http.StatusTeapot}, rec.codes)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unmatched", rec.routes[1])
}

func TestChainKeepsIncomingRequestID(t *testing.T) {
	h := newChain(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestChainRecoversPanics(t *testing.T) {
	h := newChain(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"internal error"`)
}
