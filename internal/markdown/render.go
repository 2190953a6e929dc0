package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/toc"
)

// RenderOptions configures one Render call.
type RenderOptions struct {
	Link LinkContext
	// IDs generates heading anchors. Nil means a fresh generator.
	IDs *toc.HeadingIDs
}

// Renderer converts bodies to HTML. It is safe for concurrent use; per
// document state travels in the parser context.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a renderer with GFM, heading anchors, relative
// link rewriting and raw HTML passthrough.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(NewLinkRewriter(LinkContext{}), 100),
				util.Prioritized(headingAnchors{}, 200),
			),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{md: md}
}

// Render converts body to HTML.
func (r *Renderer) Render(body []byte, opts RenderOptions) ([]byte, error) {
	ids := opts.IDs
	if ids == nil {
		ids = toc.NewHeadingIDs()
	}
	pc := parser.NewContext(parser.WithIDs(ids))
	WithLinkContext(pc, opts.Link)

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf, parser.WithContext(pc)); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryRender, "render markdown").Build()
	}
	return buf.Bytes(), nil
}

var defaultRenderer = NewRenderer()

// Render converts body to HTML with a shared renderer.
func Render(body []byte, opts RenderOptions) ([]byte, error) {
	return defaultRenderer.Render(body, opts)
}
