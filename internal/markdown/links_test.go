package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	src := []byte("" +
		"See [API](api.md) and ![Diagram](diagram.png).\n" +
		"Visit <https://example.com/path>.\n" +
		"Inline code: `[Link](./ignored-inline.md)`\n" +
		"\n" +
		"```\n" +
		"[Link](./ignored-fence.md)\n" +
		"```\n" +
		"\n" +
		"Ref [usage][ref].\n" +
		"\n" +
		"[ref]: ./ref.md\n")

	links := ExtractLinks(src)
	require.Len(t, links, 5)
	assert.Equal(t, Link{Kind: LinkKindInline, Destination: "api.md"}, links[0])
	assert.Equal(t, Link{Kind: LinkKindImage, Destination: "diagram.png"}, links[1])
	assert.Equal(t, Link{Kind: LinkKindAuto, Destination: "https://example.com/path"}, links[2])
	assert.Equal(t, Link{Kind: LinkKindInline, Destination: "./ref.md"}, links[3])
	assert.Equal(t, Link{Kind: LinkKindReferenceDefinition, Destination: "./ref.md"}, links[4])
}
