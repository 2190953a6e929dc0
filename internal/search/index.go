// Package search maintains a bleve full-text index of rendered pages.
package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"git.home.luguber.info/inful/docsite/internal/docs"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Index field names.
const (
	FieldLocale   = "locale"
	FieldSlug     = "slug"
	FieldHref     = "href"
	FieldTitle    = "title"
	FieldHeadings = "headings"
	FieldContent  = "content"
)

// DefaultMaxResults caps a query when the caller gives no limit.
const DefaultMaxResults = 20

// Document is one page as indexed.
type Document struct {
	Locale   string
	Slug     []string
	Href     string
	Title    string
	Headings []string
	Content  string
}

// ID is the index key of the document: locale and slug key.
func (d Document) ID() string {
	return d.Locale + ":" + docs.SlugKey(d.Slug)
}

// Hit is one search result.
type Hit struct {
	Locale    string   `json:"locale"`
	Slug      []string `json:"slug"`
	Href      string   `json:"href"`
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Fragments []string `json:"fragments,omitempty"`
}

// Results is the answer to a query.
type Results struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// NewMapping returns the index mapping for pages.
func NewMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	keywordField := func(index bool) *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		f.Index = index
		return f
	}
	docMapping.AddFieldMappingsAt(FieldLocale, keywordField(true))
	docMapping.AddFieldMappingsAt(FieldSlug, keywordField(false))
	docMapping.AddFieldMappingsAt(FieldHref, keywordField(false))

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	docMapping.AddFieldMappingsAt(FieldTitle, title)

	headings := bleve.NewTextFieldMapping()
	headings.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(FieldHeadings, headings)

	content := bleve.NewTextFieldMapping()
	content.Analyzer = standard.Name
	content.Store = true
	content.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(FieldContent, content)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping
	im.DefaultAnalyzer = standard.Name
	return im
}

// Index wraps a bleve index of pages.
type Index struct {
	idx  bleve.Index
	path string
}

// Create makes a fresh index at path, replacing any existing one. An empty
// path creates an in-memory index.
func Create(path string) (*Index, error) {
	var (
		idx bleve.Index
		err error
	)
	if path == "" {
		idx, err = bleve.NewMemOnly(NewMapping())
	} else {
		if err := os.RemoveAll(path); err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "remove old search index").
				WithPath(path).
				Build()
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create search index parent").
				WithPath(path).
				Build()
		}
		idx, err = bleve.New(path, NewMapping())
	}
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategorySearch, "failed to create index").
			WithPath(path).
			Build()
	}
	return &Index{idx: idx, path: path}, nil
}

// Open opens an existing on-disk index.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategorySearch, "failed to open index").
			WithPath(path).
			Build()
	}
	return &Index{idx: idx, path: path}, nil
}

// Exists reports whether an on-disk index is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Add indexes documents in one batch.
func (i *Index) Add(documents ...Document) error {
	batch := i.idx.NewBatch()
	for _, d := range documents {
		err := batch.Index(d.ID(), map[string]any{
			FieldLocale:   d.Locale,
			FieldSlug:     docs.SlugKey(d.Slug),
			FieldHref:     d.Href,
			FieldTitle:    d.Title,
			FieldHeadings: strings.Join(d.Headings, "\n"),
			FieldContent:  d.Content,
		})
		if err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategorySearch, "failed to index document").
				WithContext("id", d.ID()).
				Build()
		}
	}
	if err := i.idx.Batch(batch); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategorySearch, "failed to write batch").Build()
	}
	return nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	return i.idx.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	return i.idx.Close()
}

// Search runs q against the documents of one locale. Title and heading
// matches weigh more than body matches.
func (i *Index) Search(ctx context.Context, localeID, q string, limit int) (Results, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Results{Query: q, Hits: []Hit{}}, nil
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	req := bleve.NewSearchRequest(buildQuery(localeID, q))
	req.Size = limit
	req.Fields = []string{FieldLocale, FieldSlug, FieldHref, FieldTitle}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField(FieldContent)

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return Results{}, foundationerrors.SearchError("search failed").
			WithCause(err).
			WithContext("query", q).
			Build()
	}

	out := Results{Query: q, Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score, Fragments: h.Fragments[FieldContent]}
		hit.Locale, _ = h.Fields[FieldLocale].(string)
		hit.Href, _ = h.Fields[FieldHref].(string)
		hit.Title, _ = h.Fields[FieldTitle].(string)
		slug, _ := h.Fields[FieldSlug].(string)
		hit.Slug = docs.ParseSlugKey(slug)
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func buildQuery(localeID, q string) query.Query {
	content := bleve.NewMatchQuery(q)
	content.SetField(FieldContent)

	headings := bleve.NewMatchQuery(q)
	headings.SetField(FieldHeadings)
	headings.SetBoost(3.0)

	title := bleve.NewMatchQuery(q)
	title.SetField(FieldTitle)
	title.SetBoost(5.0)

	text := bleve.NewDisjunctionQuery(content, headings, title)
	if localeID == "" {
		return text
	}
	loc := bleve.NewTermQuery(localeID)
	loc.SetField(FieldLocale)
	return bleve.NewConjunctionQuery(text, loc)
}

var errNoIndex = foundationerrors.SearchError("search index is not available").Build()
