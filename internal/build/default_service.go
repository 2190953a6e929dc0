package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	dberrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/observability"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Output file names inside each locale directory.
const (
	SidebarFile = "sidebar.json"
	PathsFile   = "paths.json"
	PagesDir    = "pages"
)

// HeadFunc returns the commit the content was built from.
type HeadFunc func() (string, error)

// PagePayload is the JSON document written for one page.
type PagePayload struct {
	*site.Page
	HTML string `json:"html"`
}

// PathEntry is one element of a locale's paths.json.
type PathEntry struct {
	Slug     []string `json:"slug"`
	Href     string   `json:"href"`
	Fallback bool     `json:"fallback,omitempty"`
}

// PagePath is the payload file of slug in a locale.
func PagePath(outDir, localeID string, slug []string) string {
	if len(slug) == 0 {
		return filepath.Join(outDir, localeID, PagesDir, "index.json")
	}
	return filepath.Join(outDir, localeID, PagesDir, filepath.Join(slug...)+".json")
}

// DefaultBuildService builds from a content service.
type DefaultBuildService struct {
	svc      *site.Service
	recorder metrics.Recorder
	head     HeadFunc
	newID    func() string
	now      func() time.Time
}

// NewBuildService creates a build service over svc.
func NewBuildService(svc *site.Service) *DefaultBuildService {
	return &DefaultBuildService{
		svc:      svc,
		recorder: metrics.NoopRecorder{},
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(rec metrics.Recorder) *DefaultBuildService {
	if rec != nil {
		s.recorder = rec
	}
	return s
}

// WithHead records the source commit in the manifest.
func (s *DefaultBuildService) WithHead(head HeadFunc) *DefaultBuildService {
	s.head = head
	return s
}

// WithIDGenerator replaces the random build ID generator (for testing).
func (s *DefaultBuildService) WithIDGenerator(f func() string) *DefaultBuildService {
	if f != nil {
		s.newID = f
	}
	return s
}

type localePlan struct {
	id       string
	slugs    [][]string
	fallback []bool
	pages    []*site.Page
}

// Run executes a build.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := s.now()
	buildID := s.newID()
	ctx = observability.WithBuildID(ctx, buildID)
	result := &BuildResult{BuildID: buildID, StartTime: start, OutputPath: req.OutputDir}

	finish := func(status BuildStatus, err error) (*BuildResult, error) {
		if err != nil && ctx.Err() != nil {
			status = BuildStatusCancelled
		}
		result.Status = status
		result.EndTime = s.now()
		result.Duration = result.EndTime.Sub(start)
		s.recorder.ObserveBuildDuration(result.Duration)
		if err != nil {
			observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
		}
		return result, err
	}

	if req.OutputDir == "" {
		return finish(BuildStatusFailed, dberrors.ConfigError("output directory required").Build())
	}
	observability.InfoContext(ctx, "Starting build", logfields.Path(req.OutputDir))

	ids := s.svc.Registry().IDs()
	result.Locales = len(ids)

	if err := s.checkCollisions(ctx, ids, req.Options, result); err != nil {
		return finish(BuildStatusFailed, err)
	}

	plans, err := s.plan(ctx, ids, req.Options.Concurrency)
	if err != nil {
		return finish(BuildStatusFailed, err)
	}

	m := &manifest.BuildManifest{
		ID:        buildID,
		Timestamp: start.UTC(),
		Pages:     make(map[string]string),
		Search:    req.Options.Search,
	}
	for _, p := range plans {
		out := manifest.LocaleOutput{ID: p.id}
		for i, page := range p.pages {
			m.Pages[manifest.PageKey(p.id, p.slugs[i])] = page.Document.Fingerprint
			out.Pages++
			if p.fallback[i] {
				out.FallbackPages++
			} else {
				result.IncludeWarnings += len(page.Document.IncludeWarnings)
			}
		}
		result.Pages += out.Pages
		result.FallbackPages += out.FallbackPages
		m.Locales = append(m.Locales, out)
	}
	m.ContentHash = m.Hash()
	result.ContentHash = m.ContentHash

	if req.Options.SkipIfUnchanged {
		prev, err := manifest.Read(req.OutputDir)
		if err != nil {
			observability.WarnContext(ctx, "Previous manifest unreadable", logfields.Error(err))
		} else if prev != nil && prev.Status == string(BuildStatusSuccess) && prev.ContentHash == m.ContentHash {
			observability.InfoContext(ctx, "Build skipped - no changes detected")
			result.Skipped = true
			result.SkipReason = "no_changes"
			return finish(BuildStatusSkipped, nil)
		}
	}

	if req.Options.Clean {
		if err := os.RemoveAll(req.OutputDir); err != nil {
			return finish(BuildStatusFailed, dberrors.WrapError(err, dberrors.CategoryFileSystem, "clean output directory").
				WithPath(req.OutputDir).
				Build())
		}
	}

	if err := s.write(ctx, req, plans); err != nil {
		return finish(BuildStatusFailed, err)
	}

	if req.Options.Search {
		n, err := s.buildSearch(ctx, req.Options.SearchIndexDir)
		if err != nil {
			return finish(BuildStatusFailed, err)
		}
		result.SearchDocuments = n
	}

	if s.head != nil {
		if commit, err := s.head(); err == nil {
			m.Commit = commit
		} else {
			observability.DebugContext(ctx, "No source commit recorded", logfields.Error(err))
		}
	}
	m.Status = string(BuildStatusSuccess)
	m.Duration = s.now().Sub(start).Milliseconds()
	if err := m.Write(req.OutputDir); err != nil {
		return finish(BuildStatusFailed, writeError(err, filepath.Join(req.OutputDir, manifest.FileName)))
	}

	res, err := finish(BuildStatusSuccess, nil)
	observability.InfoContext(ctx, "Build completed",
		logfields.Count(result.Pages),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return res, err
}

func (s *DefaultBuildService) checkCollisions(ctx context.Context, ids []string, opts BuildOptions, result *BuildResult) error {
	timer := metrics.StartStage(s.recorder, "collisions")
	var errs []error
	for _, id := range ids {
		found, err := s.svc.Collisions(id)
		if err != nil {
			timer.Stop(err)
			return err
		}
		for _, c := range found {
			result.Collisions = append(result.Collisions, c)
			errs = append(errs, c)
		}
	}
	if len(errs) == 0 || opts.AllowCollisions {
		timer.Stop(nil)
		if len(errs) > 0 {
			observability.WarnContext(ctx, "Building despite slug collisions", logfields.Count(len(errs)))
		}
		return nil
	}
	err := dberrors.ConfigError("slug collisions; rename the files or pass --allow-collisions").
		WithCause(fmt.Errorf("%w: %w", ErrCollisions, errors.Join(errs...))).
		WithContext("count", len(errs)).
		Build()
	timer.Stop(err)
	return err
}

func (s *DefaultBuildService) plan(ctx context.Context, ids []string, concurrency int) ([]*localePlan, error) {
	timer := metrics.StartStage(s.recorder, "plan")
	plans := make([]*localePlan, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			slugs, fallback, err := s.svc.ServedSlugs(id)
			if err != nil {
				return err
			}
			p := &localePlan{id: id}
			for j, slug := range slugs {
				if err := gctx.Err(); err != nil {
					return err
				}
				page, ok, err := s.svc.ResolvePage(id, slug)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				p.slugs = append(p.slugs, slug)
				p.fallback = append(p.fallback, fallback[j])
				p.pages = append(p.pages, page)
			}
			plans[i] = p
			return nil
		})
	}
	err := g.Wait()
	timer.Stop(err)
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *DefaultBuildService) write(ctx context.Context, req BuildRequest, plans []*localePlan) error {
	timer := metrics.StartStage(s.recorder, "write")
	g, gctx := errgroup.WithContext(ctx)
	if req.Options.Concurrency > 0 {
		g.SetLimit(req.Options.Concurrency)
	}
	for _, p := range plans {
		g.Go(func() error {
			return s.writeLocale(observability.WithLocale(gctx, p.id), req.OutputDir, p)
		})
	}
	err := g.Wait()
	timer.Stop(err)
	return err
}

func (s *DefaultBuildService) writeLocale(ctx context.Context, outDir string, p *localePlan) error {
	paths := make([]PathEntry, 0, len(p.pages))
	for i, page := range p.pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := s.svc.RenderHTML(p.id, page.Document)
		if err != nil {
			return dberrors.WrapError(fmt.Errorf("%w: %w", ErrRender, err), dberrors.CategoryRender, "render page").
				WithLocale(p.id).
				WithPath(page.Document.Path).
				Build()
		}
		target := PagePath(outDir, p.id, p.slugs[i])
		if err := writeJSON(target, PagePayload{Page: page, HTML: string(html)}); err != nil {
			return err
		}
		paths = append(paths, PathEntry{Slug: p.slugs[i], Href: page.Href, Fallback: p.fallback[i]})
	}

	sidebar, err := s.svc.Sidebar(p.id)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, p.id, SidebarFile), sidebar); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, p.id, PathsFile), paths); err != nil {
		return err
	}
	observability.InfoContext(ctx, "Locale written", logfields.Count(len(p.pages)))
	return nil
}

func (s *DefaultBuildService) buildSearch(ctx context.Context, dir string) (int, error) {
	if dir == "" {
		return 0, dberrors.ConfigError("search index directory required").Build()
	}
	idx, err := search.Create(dir)
	if err != nil {
		return 0, err
	}
	n, err := search.Build(ctx, s.svc, idx, s.recorder)
	if cerr := idx.Close(); err == nil && cerr != nil {
		err = dberrors.WrapError(cerr, dberrors.CategorySearch, "close search index").Build()
	}
	return n, err
}

func writeJSON(target string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return dberrors.WrapError(err, dberrors.CategoryInternal, "encode output").
			WithPath(target).
			Build()
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return writeError(err, target)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return writeError(err, target)
	}
	return nil
}

func writeError(err error, target string) error {
	return dberrors.WrapError(fmt.Errorf("%w: %w", ErrWrite, err), dberrors.CategoryFileSystem, "write output").
		WithPath(target).
		Build()
}

var _ BuildService = (*DefaultBuildService)(nil)
