package include

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSubstitutes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snippet.md"), []byte("X"), 0o644))

	res := Resolve("A\n<!-- INCLUDE snippet.md -->\nB", filepath.Join(dir, "page.md"), nil)
	assert.Equal(t, "A\nX\nB", res.Content)
	assert.Empty(t, res.Warnings)
}

func TestResolveMissingLeavesDirective(t *testing.T) {
	dir := t.TempDir()
	src := "A\n<!-- INCLUDE snippet.md -->\nB"

	res := Resolve(src, filepath.Join(dir, "page.md"), nil)
	assert.Equal(t, src, res.Content)
	assert.Contains(t, res.Content, "A")
	assert.Contains(t, res.Content, "B")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "<!-- INCLUDE snippet.md -->", res.Warnings[0].Directive)
	assert.Equal(t, filepath.Join(dir, "snippet.md"), res.Warnings[0].Path)
	assert.ErrorIs(t, res.Warnings[0], fs.ErrNotExist)
}

func TestResolveIsSingleLevelAndRelative(t *testing.T) {
	files := map[string]string{
		filepath.FromSlash("/docs/guides/parts/a.md"): "alpha <!-- INCLUDE b.md -->",
		filepath.FromSlash("/docs/shared.md"):         "shared",
	}
	read := func(p string) ([]byte, error) {
		if s, ok := files[p]; ok {
			return []byte(s), nil
		}
		return nil, fs.ErrNotExist
	}

	src := "<!--INCLUDE parts/a.md--> | <!--   INCLUDE   ../shared.md   -->"
	res := Resolve(src, filepath.FromSlash("/docs/guides/page.mdx"), read)
	assert.Equal(t, "alpha <!-- INCLUDE b.md --> | shared", res.Content)
	assert.Empty(t, res.Warnings)
}

func TestResolveWithoutDirectives(t *testing.T) {
	res := Resolve("no directives <!-- a comment -->", "/x/page.md", func(string) ([]byte, error) {
		t.Fatal("read must not be called")
		return nil, nil
	})
	assert.Equal(t, "no directives <!-- a comment -->", res.Content)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.md"), []byte("P"), 0o644))
	page := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(page, []byte("[<!-- INCLUDE part.md -->]"), 0o644))

	res, err := ResolveFile(page)
	require.NoError(t, err)
	assert.Equal(t, "[P]", res.Content)

	_, err = ResolveFile(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}
