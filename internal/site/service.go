// Package site is the content service: it indexes each locale's documents,
// reads and caches document bodies, builds sidebars and resolves pages with
// the default-locale fallback.
package site

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/docs"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/locale"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/nav"
	"git.home.luguber.info/inful/docsite/internal/util/sets"
)

// ChangelogSlug is the route of the repository changelog in every locale.
var ChangelogSlug = []string{"changelog"}

// LastModifier reports when a file last changed; *git.History satisfies it.
type LastModifier interface {
	LastUpdated(absPath string) *time.Time
}

// Options configures a Service.
type Options struct {
	BasePath      string
	ChangelogPath string
	IntroSlug     []string
	APISegment    string
	Sections      []nav.Section
	Reserved      docs.ReservedDirs
	// Strings returns the UI strings of a locale.
	Strings func(localeID string) map[string]string
}

// Option customizes a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// WithReadFunc replaces os.ReadFile for content and include reads.
func WithReadFunc(read docs.ReadFunc) Option {
	return func(s *Service) {
		if read != nil {
			s.read = read
		}
	}
}

// WithHistory enables LastUpdated timestamps.
func WithHistory(h LastModifier) Option {
	return func(s *Service) { s.history = h }
}

// WithCache shares a cache between services.
func WithCache(c *Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// Service serves documents, sidebars and pages for every configured locale.
type Service struct {
	registry  *locale.Registry
	opts      Options
	locator   *docs.Locator
	extractor *docs.Extractor
	renderer  *markdown.Renderer
	read      docs.ReadFunc
	rec       metrics.Recorder
	history   LastModifier
	cache     *Cache
}

type localeIndex struct {
	docs       []docs.DocumentMetadata
	bySlug     map[string]int
	collisions []docs.SlugCollision
}

// NewService creates a content service.
func NewService(registry *locale.Registry, opts Options, options ...Option) *Service {
	if opts.APISegment == "" {
		opts.APISegment = nav.GroupAPI
	}
	if opts.IntroSlug == nil {
		opts.IntroSlug = []string{"intro"}
	}
	if opts.Reserved == (docs.ReservedDirs{}) {
		opts.Reserved = docs.DefaultReservedDirs
	}
	s := &Service{
		registry: registry,
		opts:     opts,
		renderer: markdown.NewRenderer(),
		read:     os.ReadFile,
		rec:      metrics.NoopRecorder{},
		cache:    NewCache(),
	}
	for _, o := range options {
		o(s)
	}
	s.locator = docs.NewLocator(registry, opts.Reserved)
	s.extractor = docs.NewExtractor(s.read)
	return s
}

// FromConfig derives service options from a loaded configuration.
func FromConfig(cfg *config.Config, registry *locale.Registry, options ...Option) (*Service, error) {
	changelog, err := cfg.ChangelogPath()
	if err != nil {
		return nil, err
	}
	sections := make([]nav.Section, 0, len(cfg.Site.Sections))
	for _, sc := range cfg.Site.Sections {
		sections = append(sections, nav.Section{Key: sc.Key, Title: sc.Title, Href: sc.Href})
	}
	opts := Options{
		BasePath:      cfg.Site.BasePath,
		ChangelogPath: changelog,
		IntroSlug:     docs.ParseSlugKey(cfg.Site.IntroSlug),
		APISegment:    cfg.Site.APISegment,
		Sections:      sections,
		Reserved:      docs.ReservedDirs{Translations: cfg.Site.TranslationsDir, Static: cfg.Site.StaticDir},
		Strings:       cfg.UIStrings,
	}
	return NewService(registry, opts, options...), nil
}

// Registry returns the locale registry.
func (s *Service) Registry() *locale.Registry { return s.registry }

// Options returns the options the service was created with.
func (s *Service) Options() Options { return s.opts }

// Reset drops every cached entry.
func (s *Service) Reset() {
	s.cache.Reset()
	slog.Debug("Content cache reset")
}

// CachedDocuments returns the number of document bodies currently cached.
func (s *Service) CachedDocuments() int { return s.cache.Len() }

// Root returns the home route of a locale.
func (s *Service) Root(localeID string) string {
	return markdown.Href(s.base(localeID), nil)
}

// Href returns the route of slug in a locale.
func (s *Service) Href(localeID string, slug []string) string {
	return markdown.Href(s.base(localeID), slug)
}

func (s *Service) base(localeID string) string {
	return s.opts.BasePath + s.registry.Prefix(localeID)
}

func (s *Service) strings(localeID string) map[string]string {
	if s.opts.Strings == nil {
		return nil
	}
	return s.opts.Strings(localeID)
}

func (s *Service) locale(localeID string) (locale.Locale, error) {
	loc, ok := s.registry.Get(localeID)
	if !ok {
		return locale.Locale{}, foundationerrors.NotFoundError("unknown locale").
			WithLocale(localeID).
			Build()
	}
	return loc, nil
}

func (s *Service) index(localeID string) (*localeIndex, error) {
	loc, err := s.locale(localeID)
	if err != nil {
		return nil, err
	}
	return load(s.cache, s.rec, &s.cache.indexes, metrics.CacheMetadata, localeID, func() (*localeIndex, error) {
		return s.buildIndex(loc)
	})
}

func (s *Service) buildIndex(loc locale.Locale) (*localeIndex, error) {
	timer := metrics.StartStage(s.rec, "discover")
	files, err := s.locator.ListContentFiles(loc.ID)
	if err != nil {
		timer.Stop(err)
		return nil, err
	}
	slices.Sort(files)

	all := make([]docs.DocumentMetadata, 0, len(files))
	for _, f := range files {
		meta, err := s.extractor.ReadMetadata(loc, f)
		if err != nil {
			timer.Stop(err)
			return nil, err
		}
		all = append(all, meta)
	}

	collisions := docs.DetectCollisions(all)
	for _, c := range collisions {
		slog.Warn("Slug collision, last path wins",
			logfields.Locale(loc.ID),
			logfields.Slug(c.Slug),
			slog.Any("paths", c.Paths))
	}

	winner := make(map[string]string, len(all))
	for _, m := range all {
		winner[docs.SlugKey(m.Slug)] = m.Path
	}
	idx := &localeIndex{
		docs:       make([]docs.DocumentMetadata, 0, len(winner)),
		bySlug:     make(map[string]int, len(winner)),
		collisions: collisions,
	}
	for _, m := range all {
		key := docs.SlugKey(m.Slug)
		if winner[key] != m.Path {
			continue
		}
		idx.bySlug[key] = len(idx.docs)
		idx.docs = append(idx.docs, m)
	}

	d := timer.Stop(nil)
	slog.Info("Content indexed",
		logfields.Locale(loc.ID),
		logfields.Count(len(idx.docs)),
		logfields.DurationMS(float64(d.Microseconds())/1000))
	return idx, nil
}

// ListMetadata returns the metadata of every document of a locale, sorted
// by source path. Colliding slugs keep only the last path.
func (s *Service) ListMetadata(localeID string) ([]docs.DocumentMetadata, error) {
	idx, err := s.index(localeID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(idx.docs), nil
}

// Collisions returns the slug collisions found while indexing a locale.
func (s *Service) Collisions(localeID string) ([]docs.SlugCollision, error) {
	idx, err := s.index(localeID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(idx.collisions), nil
}

// ListSlugs returns every slug of a locale plus the changelog when it
// exists. A content file deriving the changelog slug is listed once.
func (s *Service) ListSlugs(localeID string) ([][]string, error) {
	idx, err := s.index(localeID)
	if err != nil {
		return nil, err
	}
	slugs := make([][]string, 0, len(idx.docs)+1)
	for _, m := range idx.docs {
		slugs = append(slugs, slices.Clone(m.Slug))
	}
	if _, owned := idx.bySlug[docs.SlugKey(ChangelogSlug)]; !owned && s.hasChangelog() {
		slugs = append(slugs, slices.Clone(ChangelogSlug))
	}
	return slugs, nil
}

// ListAllSlugs enumerates the slugs of every locale concurrently.
func (s *Service) ListAllSlugs(ctx context.Context) (map[string][][]string, error) {
	var mu sync.Mutex
	out := make(map[string][][]string)
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range s.registry.IDs() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slugs, err := s.ListSlugs(id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = slugs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) hasChangelog() bool {
	if s.opts.ChangelogPath == "" {
		return false
	}
	_, err := s.read(s.opts.ChangelogPath)
	return err == nil
}

// Sidebar returns the sidebar of a locale.
func (s *Service) Sidebar(localeID string) ([]nav.Item, error) {
	return s.SidebarFor(localeID, localeID)
}

// SidebarFor builds the tree of sourceID's documents with hrefs rooted in
// localeID.
func (s *Service) SidebarFor(localeID, sourceID string) ([]nav.Item, error) {
	loc, err := s.locale(localeID)
	if err != nil {
		return nil, err
	}
	return load(s.cache, s.rec, &s.cache.sidebars, metrics.CacheSidebar, localeID+"\x00"+sourceID, func() ([]nav.Item, error) {
		idx, err := s.index(sourceID)
		if err != nil {
			return nil, err
		}
		return nav.BuildSidebar(idx.docs, nav.SidebarOptions{
			Root:      s.base(localeID),
			IntroSlug: s.opts.IntroSlug,
			Tag:       loc.Tag,
		}), nil
	})
}

// ServedSlugs returns every slug a locale can serve: its own plus the
// default locale's slugs it reaches through fallback. The boolean slice
// marks the fallback entries.
func (s *Service) ServedSlugs(localeID string) ([][]string, []bool, error) {
	own, err := s.ListSlugs(localeID)
	if err != nil {
		return nil, nil, err
	}
	fallback := make([]bool, len(own))
	def := s.registry.Default().ID
	if def == localeID {
		return own, fallback, nil
	}
	seen := make(sets.Set[string], len(own))
	for _, slug := range own {
		seen.Add(docs.SlugKey(slug))
	}
	defSlugs, err := s.ListSlugs(def)
	if err != nil {
		return nil, nil, err
	}
	for _, slug := range defSlugs {
		if !seen.Has(docs.SlugKey(slug)) {
			own = append(own, slug)
			fallback = append(fallback, true)
		}
	}
	return own, fallback, nil
}
