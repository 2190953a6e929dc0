// Package linkverify checks the links of rendered documents: internal
// routes must name a known page, fragments must name an element of their
// target page, and external URLs optionally answer an HTTP HEAD request.
package linkverify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/util/sets"
)

// Options configures a Verifier.
type Options struct {
	// External enables HTTP checks of external links.
	External       bool
	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPClient     *http.Client
	Recorder       metrics.Recorder
	// Retry re-issues external requests that failed transiently. The zero
	// policy checks each URL once.
	Retry retry.Policy
	// RequestsPerSecond caps the rate of external requests; zero means
	// unlimited.
	RequestsPerSecond float64
}

// Verifier checks links across the locales of a content service.
type Verifier struct {
	svc        *site.Service
	opts       Options
	httpClient *http.Client
	linkSem    chan struct{}
	limiter    *rate.Limiter
	rec        metrics.Recorder

	mu       sync.Mutex
	external map[string]externalResult
	targets  map[string]sets.Set[string]
}

type externalResult struct {
	status int
	err    error
}

// NewVerifier creates a verifier over svc.
func NewVerifier(svc *site.Service, opts Options) *Verifier {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.RequestTimeout}
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.MaxConcurrent)
	}
	return &Verifier{
		svc:        svc,
		opts:       opts,
		httpClient: client,
		linkSem:    make(chan struct{}, opts.MaxConcurrent),
		limiter:    limiter,
		rec:        rec,
		external:   make(map[string]externalResult),
		targets:    make(map[string]sets.Set[string]),
	}
}

// VerifyAll verifies every locale and returns the broken links sorted by
// locale, source and URL.
func (v *Verifier) VerifyAll(ctx context.Context) ([]BrokenLink, error) {
	var all []BrokenLink
	for _, id := range v.svc.Registry().IDs() {
		broken, err := v.VerifyLocale(ctx, id)
		if err != nil {
			return nil, err
		}
		all = append(all, broken...)
	}
	return all, nil
}

// VerifyLocale verifies the documents a locale owns. Links may point at
// pages the locale only serves through the default-locale fallback.
func (v *Verifier) VerifyLocale(ctx context.Context, localeID string) ([]BrokenLink, error) {
	timer := metrics.StartStage(v.rec, "verify")
	known, err := v.knownPages(localeID)
	if err != nil {
		timer.Stop(err)
		return nil, err
	}
	own, err := v.svc.ListSlugs(localeID)
	if err != nil {
		timer.Stop(err)
		return nil, err
	}

	var (
		mu     sync.Mutex
		broken []BrokenLink
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.opts.MaxConcurrent)
	for _, slug := range own {
		g.Go(func() error {
			found, err := v.verifyPage(gctx, localeID, slug, known)
			if err != nil {
				return err
			}
			mu.Lock()
			broken = append(broken, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		timer.Stop(err)
		return nil, err
	}
	timer.Stop(nil)

	slices.SortFunc(broken, func(a, b BrokenLink) int {
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})
	slog.Info("Links verified", logfields.Locale(localeID), logfields.Count(len(broken)))
	return broken, nil
}

// knownPages maps every route the locale serves to its slug.
func (v *Verifier) knownPages(localeID string) (map[string][]string, error) {
	known := make(map[string][]string)
	ids := []string{localeID}
	if def := v.svc.Registry().Default().ID; def != localeID {
		ids = append(ids, def)
	}
	for _, id := range ids {
		slugs, err := v.svc.ListSlugs(id)
		if err != nil {
			return nil, err
		}
		for _, s := range slugs {
			href := v.svc.Href(localeID, s)
			if _, ok := known[href]; !ok {
				known[href] = s
			}
		}
	}
	return known, nil
}

func (v *Verifier) verifyPage(ctx context.Context, localeID string, slug []string, known map[string][]string) ([]BrokenLink, error) {
	doc, ok, err := v.svc.ReadDocument(localeID, slug)
	if err != nil || !ok {
		return nil, err
	}
	page, err := v.renderPage(localeID, doc)
	if err != nil {
		return nil, err
	}

	var broken []BrokenLink
	report := func(l Link, status int, reason string) {
		broken = append(broken, BrokenLink{
			Locale:     localeID,
			Slug:       slug,
			Source:     doc.Path,
			URL:        l.URL,
			IsInternal: l.IsInternal,
			Status:     status,
			Reason:     reason,
		})
	}

	for _, l := range page.Links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ShouldVerifyLink(l) {
			continue
		}
		if !l.IsInternal {
			if !v.opts.External {
				continue
			}
			if status, err := v.checkExternal(ctx, l.URL); err != nil {
				report(l, status, ReasonExternalFailed)
			}
			continue
		}

		u, err := url.Parse(l.URL)
		if err != nil {
			report(l, 0, ReasonUnknownPage)
			continue
		}
		if u.Path == "" {
			if u.Fragment != "" && !page.IDs.Has(u.Fragment) {
				report(l, 0, ReasonMissingAnchor)
			}
			continue
		}
		if !strings.HasPrefix(u.Path, "/") || isAsset(u.Path) {
			continue
		}
		route := u.Path
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		target, ok := known[route]
		if !ok {
			report(l, 0, ReasonUnknownPage)
			continue
		}
		if u.Fragment == "" {
			continue
		}
		ids, err := v.targetIDs(localeID, target)
		if err != nil {
			return nil, err
		}
		if !ids.Has(u.Fragment) {
			report(l, 0, ReasonMissingAnchor)
		}
	}
	return broken, nil
}

func (v *Verifier) renderPage(localeID string, doc *site.DocumentBody) (Page, error) {
	out, err := v.svc.RenderHTML(localeID, doc)
	if err != nil {
		return Page{}, err
	}
	return Extract(bytes.NewReader(out))
}

// targetIDs returns the element ids of the page a locale serves at slug.
func (v *Verifier) targetIDs(localeID string, slug []string) (sets.Set[string], error) {
	key := localeID + "\x00" + docs.SlugKey(slug)
	v.mu.Lock()
	ids, ok := v.targets[key]
	v.mu.Unlock()
	if ok {
		return ids, nil
	}

	p, found, err := v.svc.ResolvePage(localeID, slug)
	if err != nil {
		return nil, err
	}
	ids = sets.New[string]()
	if found {
		page, err := v.renderPage(localeID, p.Document)
		if err != nil {
			return nil, err
		}
		ids = page.IDs
	}
	v.mu.Lock()
	v.targets[key] = ids
	v.mu.Unlock()
	return ids, nil
}

// checkExternal issues one HEAD request per URL and remembers the outcome.
func (v *Verifier) checkExternal(ctx context.Context, linkURL string) (int, error) {
	v.mu.Lock()
	res, ok := v.external[linkURL]
	v.mu.Unlock()
	if ok {
		return res.status, res.err
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case v.linkSem <- struct{}{}:
	}
	var status int
	err := v.opts.Retry.Do(ctx, func(attempt int) error {
		var err error
		status, err = v.checkExternalLink(ctx, linkURL)
		if err == nil {
			return nil
		}
		if !isTransient(status) {
			return retry.Permanent(err)
		}
		slog.Debug("External link check failed, may retry", logfields.Path(linkURL), logfields.Count(attempt+1), logfields.Error(err))
		return err
	})
	<-v.linkSem

	if err != nil {
		slog.Debug("External link failed", logfields.Path(linkURL), logfields.Status(status), logfields.Error(err))
	}
	v.mu.Lock()
	v.external[linkURL] = externalResult{status: status, err: err}
	v.mu.Unlock()
	return status, err
}

func (v *Verifier) checkExternalLink(ctx context.Context, linkURL string) (int, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, linkURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "docsite-linkverify/1.0")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	// The resource exists but wants credentials.
	if isAuthError(resp.StatusCode) {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.StatusCode, nil
}

// isTransient reports failures worth retrying: transport errors (status 0),
// rate limiting and server errors.
func isTransient(statusCode int) bool {
	return statusCode == 0 || statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func isAuthError(statusCode int) bool {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}
