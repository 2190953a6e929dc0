package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestResolveLink(t *testing.T) {
	page := LinkContext{BasePath: "/docs", Slug: []string{"guides", "setup"}}
	index := LinkContext{BasePath: "/docs", Slug: []string{"guides"}, IsIndex: true}
	home := LinkContext{Slug: []string{}, IsIndex: true}

	tests := []struct {
		name   string
		target string
		ctx    LinkContext
		want   string
	}{
		{"parent dir", "../intro.md", page, "/docs/intro"},
		{"sibling", "./advanced.md", page, "/docs/guides/advanced"},
		{"bare sibling mdx", "advanced.mdx", page, "/docs/guides/advanced"},
		{"https unchanged", "https://example.com", page, "https://example.com"},
		{"anchor unchanged", "#anchor", page, "#anchor"},
		{"absolute unchanged", "/abs/path", page, "/abs/path"},
		{"mailto unchanged", "mailto:a@b.c", page, "mailto:a@b.c"},
		{"tel unchanged", "tel:+123", page, "tel:+123"},
		{"custom scheme unchanged", "vscode://file", page, "vscode://file"},
		{"empty unchanged", "", page, ""},
		{"index resolves inside own dir", "./setup.md", index, "/docs/guides/setup"},
		{"collapse index", "./sub/index.md", page, "/docs/guides/sub"},
		{"collapse bare index", "index.md", page, "/docs/guides"},
		{"climb above root clamps", "../../../../x.md", page, "/docs/x"},
		{"to root", "../", page, "/docs"},
		{"root without base", "../index.md", LinkContext{Slug: []string{"a"}, IsIndex: true}, "/"},
		{"query and fragment kept", "../intro.md?v=1#top", page, "/docs/intro?v=1#top"},
		{"fragment only path", "?tab=2", page, "/docs/guides/setup?tab=2"},
		{"home page relative", "guides/setup.md", home, "/guides/setup"},
		{"base normalized", "a.md", LinkContext{BasePath: "docs/", Slug: []string{"x"}}, "/docs/a"},
		{"uppercase ext", "Other.MD", page, "/docs/guides/Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLink(tt.target, tt.ctx))
		})
	}
}

func TestResolveLinkAlwaysRootedProperty(t *testing.T) {
	seg := rapid.StringMatching(`[a-z]{1,6}`).Filter(func(s string) bool { return s != "index" })
	part := rapid.SampledFrom([]string{"..", ".", "index.md", "a.md", "b", "c.mdx", ""})
	rapid.Check(t, func(t *rapid.T) {
		ctx := LinkContext{
			BasePath: rapid.SampledFrom([]string{"", "/docs", "docs/", "/docs/zh"}).Draw(t, "base"),
			Slug:     rapid.SliceOfN(seg, 0, 4).Draw(t, "slug"),
			IsIndex:  rapid.Bool().Draw(t, "index"),
		}
		target := strings.Join(rapid.SliceOfN(part, 1, 6).Draw(t, "parts"), "/")
		if IsExternal(target) {
			return
		}
		got := ResolveLink(target, ctx)
		if !strings.HasPrefix(got, "/") {
			t.Fatalf("ResolveLink(%q, %+v) = %q, want leading slash", target, ctx, got)
		}
		if base := normalizeBase(ctx.BasePath); base != "" && !strings.HasPrefix(got, base) {
			t.Fatalf("ResolveLink(%q, %+v) = %q escaped base %q", target, ctx, got, base)
		}
		if strings.HasSuffix(got, "/index") || strings.Contains(got, "/../") {
			t.Fatalf("ResolveLink(%q) = %q not normalized", target, got)
		}
	})
}

func TestHref(t *testing.T) {
	assert.Equal(t, "/", Href("", nil))
	assert.Equal(t, "/docs", Href("/docs/", []string{}))
	assert.Equal(t, "/zh/a/b", Href("/zh", []string{"a", "b"}))
}
