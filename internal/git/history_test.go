package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func TestHistoryLastUpdated(t *testing.T) {
	repo, root := testutil.InitGitRepo(t)

	first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	second := first.Add(48 * time.Hour)
	testutil.CommitFile(t, repo, root, "docs/a.md", "a", first)
	testutil.CommitFile(t, repo, root, "docs/b.md", "b", second)

	h, err := Open(filepath.Join(root, "docs"))
	require.NoError(t, err)

	a := h.LastUpdated(filepath.Join(root, "docs", "a.md"))
	require.NotNil(t, a)
	assert.True(t, first.Equal(*a), "got %v", a)

	b := h.LastUpdated(filepath.Join(root, "docs", "b.md"))
	require.NotNil(t, b)
	assert.True(t, second.Equal(*b))

	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "untracked.md"), []byte("x"), 0o644))
	assert.Nil(t, h.LastUpdated(filepath.Join(root, "docs", "untracked.md")))
	assert.Nil(t, h.LastUpdated(filepath.Join(t.TempDir(), "elsewhere.md")))

	head, err := h.Head()
	require.NoError(t, err)
	assert.Len(t, head, 40)
}

func TestOpenOutsideRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}
