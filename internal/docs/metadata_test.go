package docs

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/locale"
)

func memReader(files map[string]string) ReadFunc {
	return func(p string) ([]byte, error) {
		body, ok := files[p]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return []byte(body), nil
	}
}

func TestReadMetadataTitleResolution(t *testing.T) {
	root := filepath.FromSlash("/c/en")
	p := func(rel string) string { return filepath.Join(root, filepath.FromSlash(rel)) }
	files := map[string]string{
		p("a.md"):               "---\ntitle: Explicit\nsidebar_label: Label\n---\n# Heading\n",
		p("b.md"):               "---\nsidebar_label: Label\n---\n# Heading\n",
		p("c.md"):               "```\n# not a heading\n```\n\n# Real Heading #\n",
		p("getting-started.md"): "no headings here\n## Sub\n",
		p("guides/index.md"):    "text only",
		p("index.mdx"):          "plain",
		p("broken.md"):          "---\ntitle: [oops\n---\n# From Body\n",
		p("snake_case_name.md"): "",
	}
	ex := NewExtractor(memReader(files))
	loc := locale.Locale{ID: "en", Dir: root}

	tests := []struct {
		rel   string
		title string
	}{
		{"a.md", "Explicit"},
		{"b.md", "Label"},
		{"c.md", "Real Heading"},
		{"getting-started.md", "Getting Started"},
		{"guides/index.md", "Guides"},
		{"index.mdx", "Index"},
		{"broken.md", "From Body"},
		{"snake_case_name.md", "Snake Case Name"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			meta, err := ex.ReadMetadata(loc, p(tt.rel))
			require.NoError(t, err)
			assert.Equal(t, tt.title, meta.Title)
			assert.Equal(t, p(tt.rel), meta.Path)
		})
	}
}

func TestReadMetadataOrderAndIndex(t *testing.T) {
	root := filepath.FromSlash("/c/en")
	files := map[string]string{
		filepath.Join(root, "one.md"):          "---\nsidebar_position: 1\n---\n",
		filepath.Join(root, "half.md"):         "---\nsidebar_position: 2.5\n---\n",
		filepath.Join(root, "text.md"):         "---\nsidebar_position: \"3\"\n---\n",
		filepath.Join(root, "junk.md"):         "---\nsidebar_position: soon\n---\n",
		filepath.Join(root, "none.md"):         "",
		filepath.Join(root, "sec", "INDEX.md"): "",
		filepath.Join(root, "indexing.md"):     "",
	}
	ex := NewExtractor(memReader(files))
	loc := locale.Locale{ID: "en", Dir: root}

	order := func(name string) float64 {
		m, err := ex.ReadMetadata(loc, filepath.Join(root, name))
		require.NoError(t, err)
		return m.Order
	}
	assert.InDelta(t, 1, order("one.md"), 0)
	assert.InDelta(t, 2.5, order("half.md"), 0)
	assert.InDelta(t, 3, order("text.md"), 0)
	assert.InDelta(t, DefaultOrder, order("junk.md"), 0)
	assert.InDelta(t, DefaultOrder, order("none.md"), 0)

	m, err := ex.ReadMetadata(loc, filepath.Join(root, "sec", "INDEX.md"))
	require.NoError(t, err)
	assert.True(t, m.IsIndex)
	assert.Equal(t, []string{"sec"}, m.Slug)

	m, err = ex.ReadMetadata(loc, filepath.Join(root, "indexing.md"))
	require.NoError(t, err)
	assert.False(t, m.IsIndex)
	assert.Equal(t, []string{"indexing"}, m.Slug)
}

func TestReadMetadataReadFailure(t *testing.T) {
	ex := NewExtractor(memReader(nil))
	_, err := ex.ReadMetadata(locale.Locale{ID: "en", Dir: "/c"}, "/c/missing.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, derrors.ErrFileReadFailed))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryFileSystem))
}

func TestHumanize(t *testing.T) {
	for in, want := range map[string]string{
		"getting-started": "Getting Started",
		"api_reference":   "Api Reference",
		"FAQ":             "FAQ",
		"a--b":            "A B",
		"über-uns":        "Über Uns",
	} {
		assert.Equal(t, want, Humanize(in), in)
	}
}
