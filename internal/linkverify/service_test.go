package linkverify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/locale"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func newService(t *testing.T, files map[string]string) *site.Service {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, files)
	registry, err := locale.NewRegistry("en", []locale.Locale{
		{ID: "en", Dir: filepath.Join(root, "docs")},
		{ID: "zh", Dir: filepath.Join(root, "docs", "i18n", "zh")},
	})
	require.NoError(t, err)
	return site.NewService(registry, site.Options{})
}

func TestVerifyLocaleInternalLinks(t *testing.T) {
	svc := newService(t, map[string]string{
		"docs/index.md":        "# Home\n\n[guide](guides/setup.md) [gone](missing.md) [opts](api/foo.md#options) [bad anchor](api/foo.md#nope) [self](#home) [nowhere](#elsewhere) ![logo](/img/logo.png) [mail](mailto:a@example.com)\n",
		"docs/guides/setup.md": "# Setup\n",
		"docs/api/foo.md":      "# Foo\n\n## Options\n",
	})

	broken, err := NewVerifier(svc, Options{}).VerifyLocale(context.Background(), "en")
	require.NoError(t, err)

	got := map[string]string{}
	for _, b := range broken {
		got[b.URL] = b.Reason
		assert.True(t, strings.HasSuffix(b.Source, "index.md"))
	}
	assert.Equal(t, map[string]string{
		"/missing":      ReasonUnknownPage,
		"/api/foo#nope": ReasonMissingAnchor,
		"#elsewhere":    ReasonMissingAnchor,
	}, got)
}

func TestVerifyLocaleAcceptsFallbackTargets(t *testing.T) {
	svc := newService(t, map[string]string{
		"docs/index.md":         "# Home\n",
		"docs/api/foo.md":       "# Foo\n\n## Options\n",
		"docs/i18n/zh/index.md": "# 首页\n\n[接口](api/foo.md#options) [缺失](nope.md)\n",
	})

	broken, err := NewVerifier(svc, Options{}).VerifyLocale(context.Background(), "zh")
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, "/zh/nope", broken[0].URL)
	assert.Equal(t, "zh", broken[0].Locale)
	assert.Empty(t, broken[0].Slug)
}

func TestVerifyExternalLinks(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/private":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	svc := newService(t, map[string]string{
		"docs/index.md": "# Home\n\n[a](" + srv.URL + "/ok) [b](" + srv.URL + "/private) [c](" + srv.URL + "/gone) [d](" + srv.URL + "/gone)\n",
	})

	v := NewVerifier(svc, Options{External: true, MaxConcurrent: 1, HTTPClient: srv.Client()})
	broken, err := v.VerifyLocale(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, broken, 2)
	for _, b := range broken {
		assert.Equal(t, srv.URL+"/gone", b.URL)
		assert.Equal(t, http.StatusNotFound, b.Status)
		assert.Equal(t, ReasonExternalFailed, b.Reason)
		assert.False(t, b.IsInternal)
	}
	assert.Equal(t, int32(3), hits.Load())

	skipped, err := NewVerifier(svc, Options{}).VerifyLocale(context.Background(), "en")
	require.NoError(t, err)
	assert.Empty(t, skipped)
}

func TestVerifyExternalRetriesTransientFailures(t *testing.T) {
	var flakyHits, goneHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flaky":
			if flakyHits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			goneHits.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	svc := newService(t, map[string]string{
		"docs/index.md": "# Home\n\n[a](" + srv.URL + "/flaky) [b](" + srv.URL + "/gone)\n",
	})

	v := NewVerifier(svc, Options{
		External:   true,
		HTTPClient: srv.Client(),
		Retry:      retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 3),
	})
	broken, err := v.VerifyLocale(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, srv.URL+"/gone", broken[0].URL)
	assert.Equal(t, int32(3), flakyHits.Load())
	assert.Equal(t, int32(1), goneHits.Load(), "client errors are not retried")
}

func TestVerifyAll(t *testing.T) {
	svc := newService(t, map[string]string{
		"docs/index.md":         "# Home\n\n[x](x.md)\n",
		"docs/i18n/zh/index.md": "# 首页\n\n[y](y.md)\n",
	})

	broken, err := NewVerifier(svc, Options{}).VerifyAll(context.Background())
	require.NoError(t, err)
	require.Len(t, broken, 2)
	assert.Equal(t, "en", broken[0].Locale)
	assert.Equal(t, "zh", broken[1].Locale)
}

func TestVerifyExternalRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	svc := newService(t, map[string]string{
		"docs/index.md": "# Home\n\n[a](" + srv.URL + "/a) [b](" + srv.URL + "/b) [c](" + srv.URL + "/c)\n",
	})

	v := NewVerifier(svc, Options{External: true, MaxConcurrent: 1, HTTPClient: srv.Client(), RequestsPerSecond: 20})
	start := time.Now()
	broken, err := v.VerifyLocale(context.Background(), "en")
	require.NoError(t, err)
	assert.Empty(t, broken)
	assert.Equal(t, int32(3), hits.Load())
	// Burst of one: the second and third requests each wait a 50ms token.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
