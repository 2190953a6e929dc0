package site

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/include"
	"git.home.luguber.info/inful/docsite/internal/locale"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/toc"
)

// StringChangelogNotice is the UI string used when a locale has no
// changelog notice of its own.
const StringChangelogNotice = "changelog_notice"

// DocumentBody is a fully read document. Values handed out by the service
// are shared and must not be modified.
type DocumentBody struct {
	docs.DocumentMetadata
	// Content is the body without frontmatter and with includes expanded.
	Content         string            `json:"content"`
	Frontmatter     map[string]any    `json:"frontmatter"`
	Toc             []toc.Item        `json:"toc"`
	Fingerprint     string            `json:"fingerprint"`
	LastUpdated     *time.Time        `json:"lastUpdated,omitempty"`
	IncludeWarnings []include.Warning `json:"includeWarnings,omitempty"`
}

// ReadDocument returns the document of slug in a locale. The boolean is
// false, with a nil error, when the locale has no such document.
func (s *Service) ReadDocument(localeID string, slug []string) (*DocumentBody, bool, error) {
	loc, err := s.locale(localeID)
	if err != nil {
		return nil, false, err
	}
	key := docs.SlugKey(slug)

	if key == docs.SlugKey(ChangelogSlug) {
		if body, ok, err := s.readChangelog(loc); ok || err != nil {
			return body, ok, err
		}
	}

	idx, err := s.index(localeID)
	if err != nil {
		return nil, false, err
	}
	i, ok := idx.bySlug[key]
	if !ok {
		return nil, false, nil
	}
	meta := idx.docs[i]

	body, err := load(s.cache, s.rec, &s.cache.documents, metrics.CacheDocument, localeID+"\x00"+key, func() (*DocumentBody, error) {
		return s.readBody(loc, meta)
	})
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (s *Service) readBody(loc locale.Locale, meta docs.DocumentMetadata) (*DocumentBody, error) {
	timer := metrics.StartStage(s.rec, "read")
	_, doc, err := s.extractor.Read(loc.Dir, meta.Path)
	if err != nil {
		timer.Stop(err)
		return nil, err
	}
	body, err := s.assemble(loc, meta, doc.Fields, string(doc.Body))
	timer.Stop(err)
	return body, err
}

func (s *Service) assemble(loc locale.Locale, meta docs.DocumentMetadata, fields map[string]any, raw string) (*DocumentBody, error) {
	res := include.Resolve(raw, meta.Path, include.ReadFunc(s.read))
	for range res.Warnings {
		s.rec.IncIncludeFailure(loc.ID)
	}

	fp, err := frontmatter.Fingerprint(fields, res.Content)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryDocs, "fingerprint document").
			WithPath(meta.Path).
			Build()
	}
	if fields == nil {
		fields = map[string]any{}
	}

	body := &DocumentBody{
		DocumentMetadata: meta,
		Content:          res.Content,
		Frontmatter:      fields,
		Toc:              toc.Extract(res.Content),
		Fingerprint:      fp,
		IncludeWarnings:  res.Warnings,
	}
	if s.history != nil {
		body.LastUpdated = s.history.LastUpdated(meta.Path)
	}
	return body, nil
}

// readChangelog serves the repository changelog. Non-default locales get
// their notice prepended as a blockquote.
func (s *Service) readChangelog(loc locale.Locale) (*DocumentBody, bool, error) {
	if s.opts.ChangelogPath == "" {
		return nil, false, nil
	}
	if _, err := s.read(s.opts.ChangelogPath); err != nil {
		return nil, false, nil
	}
	key := docs.SlugKey(ChangelogSlug)
	body, err := load(s.cache, s.rec, &s.cache.documents, metrics.CacheDocument, loc.ID+"\x00"+key, func() (*DocumentBody, error) {
		data, err := s.read(s.opts.ChangelogPath)
		if err != nil {
			return nil, foundationerrors.FileSystemError("read changelog").
				WithCause(err).
				WithPath(s.opts.ChangelogPath).
				Build()
		}
		doc := frontmatter.Parse(data)
		meta := docs.BuildMetadata(s.opts.ChangelogPath, ChangelogSlug, doc)
		if _, fromFile := doc.String(docs.KeyTitle); !fromFile {
			if _, heading := docs.FirstHeading(doc.Body); !heading {
				meta.Title = "Changelog"
			}
		}
		meta.IsIndex = false

		content := string(doc.Body)
		if !s.registry.IsDefault(loc.ID) {
			notice := loc.ChangelogNotice
			if notice == "" {
				notice = s.strings(loc.ID)[StringChangelogNotice]
			}
			if notice != "" {
				content = Blockquote(notice) + "\n\n" + content
			}
		}
		return s.assemble(loc, meta, doc.Fields, content)
	})
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// Blockquote quotes every line of text as Markdown.
func Blockquote(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// RenderHTML renders a document for display in a locale. Relative links
// resolve against the locale's routes, so fallback documents keep readers
// inside the requested locale.
func (s *Service) RenderHTML(localeID string, doc *DocumentBody) ([]byte, error) {
	timer := metrics.StartStage(s.rec, "render")
	out, err := s.renderer.Render([]byte(doc.Content), markdown.RenderOptions{
		Link: markdown.LinkContext{
			BasePath: s.base(localeID),
			Slug:     doc.Slug,
			IsIndex:  doc.IsIndex,
		},
	})
	timer.Stop(err)
	if err != nil {
		return nil, err
	}
	s.rec.AddPagesRendered(localeID, 1)
	return out, nil
}
