package markdown

import (
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// LinkContext locates the document whose links are being rewritten.
type LinkContext struct {
	// BasePath is prepended to every resolved route, e.g. "/docs" or
	// "/docs/zh". Empty means the site root.
	BasePath string
	Slug     []string
	IsIndex  bool
}

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// IsExternal reports whether target is left untouched by the rewriter:
// empty, fragment-only, absolute, mailto:, tel: or any other URI scheme.
func IsExternal(target string) bool {
	switch {
	case target == "":
		return true
	case strings.HasPrefix(target, "#"), strings.HasPrefix(target, "/"):
		return true
	case strings.HasPrefix(target, "mailto:"), strings.HasPrefix(target, "tel:"):
		return true
	}
	return schemePattern.MatchString(target)
}

// ResolveSlug resolves a relative target against the document's directory
// and returns the target slug plus any ?query/#fragment suffix. ok is false
// for external targets.
func ResolveSlug(target string, ctx LinkContext) (slug []string, suffix string, ok bool) {
	if IsExternal(target) {
		return nil, "", false
	}
	p := target
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		p, suffix = target[:i], target[i:]
	}

	var joined string
	if p == "" {
		joined = path.Join("/", strings.Join(ctx.Slug, "/"))
	} else {
		joined = path.Join("/", strings.Join(documentDir(ctx), "/"), p)
	}

	trimmed := strings.Trim(joined, "/")
	if trimmed == "" {
		return []string{}, suffix, true
	}
	segments := strings.Split(trimmed, "/")
	last := len(segments) - 1
	segments[last] = stripContentExt(segments[last])
	if segments[last] == "index" {
		segments = segments[:last]
	}
	return segments, suffix, true
}

// ResolveLink rewrites a relative link target into an absolute route. The
// result always starts with "/"; external targets are returned unchanged.
func ResolveLink(target string, ctx LinkContext) string {
	slug, suffix, ok := ResolveSlug(target, ctx)
	if !ok {
		return target
	}
	return Href(ctx.BasePath, slug) + suffix
}

// Href joins a base path and a slug into a route.
func Href(basePath string, slug []string) string {
	base := normalizeBase(basePath)
	if len(slug) == 0 {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + strings.Join(slug, "/")
}

func documentDir(ctx LinkContext) []string {
	if ctx.IsIndex || len(ctx.Slug) == 0 {
		return ctx.Slug
	}
	return ctx.Slug[:len(ctx.Slug)-1]
}

func normalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

func stripContentExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".mdx", ".md"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

var linkContextKey = parser.NewContextKey()

// WithLinkContext stores a LinkContext in a parser context; a rewriter
// prefers it over the context it was created with.
func WithLinkContext(pc parser.Context, ctx LinkContext) {
	pc.Set(linkContextKey, ctx)
}

type linkRewriter struct {
	ctx LinkContext
}

// NewLinkRewriter returns a goldmark AST transformer that rewrites every
// link destination with ResolveLink.
func NewLinkRewriter(ctx LinkContext) parser.ASTTransformer {
	return &linkRewriter{ctx: ctx}
}

func (r *linkRewriter) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	ctx := r.ctx
	if v, ok := pc.Get(linkContextKey).(LinkContext); ok {
		ctx = v
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(ResolveLink(string(link.Destination), ctx))
		}
		return ast.WalkContinue, nil
	})
}
