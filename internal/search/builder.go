package search

import (
	"context"
	"log/slog"
	"sync/atomic"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// DocumentFor renders the page a locale serves at slug into an index document.
func DocumentFor(svc *site.Service, localeID string, slug []string) (Document, bool, error) {
	page, ok, err := svc.ResolvePage(localeID, slug)
	if err != nil || !ok {
		return Document{}, ok, err
	}
	out, err := svc.RenderHTML(localeID, page.Document)
	if err != nil {
		return Document{}, false, err
	}
	text, headings := PlainText(out)
	return Document{
		Locale:   localeID,
		Slug:     slug,
		Href:     page.Href,
		Title:    page.Document.Title,
		Headings: headings,
		Content:  text,
	}, true, nil
}

// Build indexes every page of every locale and returns the number of
// documents written.
func Build(ctx context.Context, svc *site.Service, idx *Index, rec metrics.Recorder) (int, error) {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	timer := metrics.StartStage(rec, "search_index")
	total := 0
	for _, id := range svc.Registry().IDs() {
		slugs, _, err := svc.ServedSlugs(id)
		if err != nil {
			timer.Stop(err)
			return total, err
		}
		batch := make([]Document, 0, len(slugs))
		for _, slug := range slugs {
			if err := ctx.Err(); err != nil {
				timer.Stop(err)
				return total, err
			}
			d, ok, err := DocumentFor(svc, id, slug)
			if err != nil {
				timer.Stop(err)
				return total, err
			}
			if ok {
				batch = append(batch, d)
			}
		}
		if err := idx.Add(batch...); err != nil {
			timer.Stop(err)
			return total, err
		}
		total += len(batch)
		slog.Debug("Locale indexed", logfields.Locale(id), logfields.Count(len(batch)))
	}
	d := timer.Stop(nil)
	slog.Info("Search index built", logfields.Count(total), logfields.DurationMS(float64(d.Microseconds())/1000))
	return total, nil
}

// Live holds the index currently serving queries so it can be rebuilt in
// the background and swapped in.
type Live struct {
	cur atomic.Pointer[Index]
}

// NewLive wraps idx, which may be nil.
func NewLive(idx *Index) *Live {
	l := &Live{}
	if idx != nil {
		l.cur.Store(idx)
	}
	return l
}

// Swap installs idx and closes the index it replaces.
func (l *Live) Swap(idx *Index) {
	if old := l.cur.Swap(idx); old != nil && old != idx {
		if err := old.Close(); err != nil {
			slog.Warn("Failed to close replaced search index", logfields.Error(err))
		}
	}
}

// Search queries the current index. Without one it reports a search error.
func (l *Live) Search(ctx context.Context, localeID, q string, limit int) (Results, error) {
	idx := l.cur.Load()
	if idx == nil {
		return Results{}, errNoIndex
	}
	return idx.Search(ctx, localeID, q, limit)
}

// Close closes the current index.
func (l *Live) Close() error {
	if idx := l.cur.Swap(nil); idx != nil {
		return idx.Close()
	}
	return nil
}
