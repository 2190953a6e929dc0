package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDuplicateHeadings(t *testing.T) {
	body := "## Setup\n\ntext\n\n## Setup\n"
	items := Extract(body)
	require.Len(t, items, 2)
	assert.Equal(t, Item{ID: "setup", Text: "Setup", Level: 2}, items[0])
	assert.Equal(t, Item{ID: "setup-1", Text: "Setup", Level: 2}, items[1])
}

func TestExtractLevelsAndFences(t *testing.T) {
	body := "# Title\n" +
		"## Install ##\n" +
		"```bash\n" +
		"## not a heading\n" +
		"```\n" +
		"### Configure the `server`\n" +
		"~~~~\n" +
		"### hidden\n" +
		"~~~\n" +
		"still hidden\n" +
		"~~~~\n" +
		"#### Too deep\n" +
		"##NoSpace\n" +
		"## C#\n"
	items := Extract(body)
	assert.Equal(t, []Item{
		{ID: "install", Text: "Install", Level: 2},
		{ID: "configure-the-server", Text: "Configure the `server`", Level: 3},
		{ID: "c", Text: "C#", Level: 2},
	}, items)
}

func TestExtractUnescapesText(t *testing.T) {
	items := Extract("## Vec\\<T\\> &amp; \\[slice\\]\n### a &lt;b&gt; &quot;c&quot; &#39;d&#39;\n## 1\\. Step\n")
	require.Len(t, items, 3)
	assert.Equal(t, "Vec<T> & [slice]", items[0].Text)
	assert.Equal(t, "vect--slice", items[0].ID)
	assert.Equal(t, `a <b> "c" 'd'`, items[1].Text)
	assert.Equal(t, "a-b-c-d", items[1].ID)
	assert.Equal(t, "1. Step", items[2].Text)
	assert.Equal(t, "1-step", items[2].ID)
}

func TestExtractIgnoresOtherLevelsForIDs(t *testing.T) {
	items := Extract("# Setup\n\n## Setup\n\n#### Notes\n\n## Notes\n")
	assert.Equal(t, []Item{
		{ID: "setup", Text: "Setup", Level: 2},
		{ID: "notes", Text: "Notes", Level: 2},
	}, items)
}

func TestExtractEmpty(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.NotNil(t, Extract("no headings"))
}

func TestSlugify(t *testing.T) {
	for in, want := range map[string]string{
		"Hello World":   "hello-world",
		"  Trim me ":    "trim-me",
		"snake_case-ok": "snake_case-ok",
		"Über Größe":    "über-größe",
		"日本語 見出し":       "日本語-見出し",
		"What's new?":   "whats-new",
		"a  b":          "a--b",
		"":              "",
	} {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestHeadingIDsCollisionChain(t *testing.T) {
	ids := NewHeadingIDs()
	assert.Equal(t, "a", ids.Next("a"))
	assert.Equal(t, "a-1", ids.Next("a"))
	assert.Equal(t, "a-1-1", ids.Next("a-1"))
	assert.Equal(t, "a-2", ids.Next("a"))
	assert.Equal(t, "heading", ids.Next("!!!"))
	assert.Equal(t, "heading-1", ids.Next("???"))

	ids.Put([]byte("reserved"))
	assert.Equal(t, "reserved-1", string(ids.Generate([]byte("Reserved"), 0)))
	assert.Equal(t, "lt", string(NewHeadingIDs().Generate([]byte("&lt;lt"), 0)))
}
