package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/toc"
)

func TestRenderRewritesLinksAndAnchors(t *testing.T) {
	body := []byte("# Guide\n\n## Setup\n\nSee [intro](../intro.md#top) and [site](https://example.com).\n\n## Setup\n\n<div class=\"note\">raw</div>\n")
	out, err := Render(body, RenderOptions{Link: LinkContext{BasePath: "/docs", Slug: []string{"guides", "setup"}}})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `href="/docs/intro#top"`)
	assert.Contains(t, html, `href="https://example.com"`)
	assert.Contains(t, html, `<h2 id="setup">Setup</h2>`)
	assert.Contains(t, html, `<h2 id="setup-1">Setup</h2>`)
	assert.Contains(t, html, `<div class="note">raw</div>`)
}

func TestRenderAnchorsMatchTOC(t *testing.T) {
	body := "# Overview\n\n## Overview\n\n### Vec&lt;T&gt;\n\n## Install\n"
	items := toc.Extract(body)

	out, err := Render([]byte(body), RenderOptions{})
	require.NoError(t, err)
	for _, item := range items {
		assert.Contains(t, string(out), `id="`+item.ID+`"`, item.Text)
	}
}

func TestRenderNumbersOtherLevelsAfterTOCHeadings(t *testing.T) {
	body := "# Setup\n\n## Setup\n\n#### Notes\n\n## Notes\n\nSetext\n------\n\n> ## Quoted\n"
	out, err := Render([]byte(body), RenderOptions{})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h2 id="setup">Setup</h2>`)
	assert.Contains(t, html, `<h2 id="notes">Notes</h2>`)
	assert.Contains(t, html, `<h1 id="setup-1">Setup</h1>`)
	assert.Contains(t, html, `<h4 id="notes-1">Notes</h4>`)
	assert.Contains(t, html, `<h2 id="setext">Setext</h2>`)
	assert.Contains(t, html, `<h2 id="quoted">Quoted</h2>`)

	for _, item := range toc.Extract(body) {
		assert.Contains(t, html, `id="`+item.ID+`"`, item.Text)
	}
}

func TestRendererUsesPerCallContext(t *testing.T) {
	r := NewRenderer()
	a, err := r.Render([]byte("[x](y.md)"), RenderOptions{Link: LinkContext{Slug: []string{"a", "b"}}})
	require.NoError(t, err)
	b, err := r.Render([]byte("[x](y.md)"), RenderOptions{Link: LinkContext{BasePath: "/zh", Slug: []string{"c"}, IsIndex: true}})
	require.NoError(t, err)

	assert.Contains(t, string(a), `href="/a/y"`)
	assert.Contains(t, string(b), `href="/zh/c/y"`)
}

func TestRenderGFMTable(t *testing.T) {
	out, err := Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"), RenderOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<table>")
}
