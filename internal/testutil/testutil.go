// Package testutil holds fixture helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// WriteTree writes files, keyed by slash-separated paths relative to root,
// creating parent directories as needed.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

// InitGitRepo initializes an empty repository in a temporary directory.
func InitGitRepo(t testing.TB) (*ggit.Repository, string) {
	t.Helper()
	root := t.TempDir()
	repo, err := ggit.PlainInit(root, false)
	require.NoError(t, err)
	return repo, root
}

// CommitFile writes rel under root and commits it with author and
// committer time when.
func CommitFile(t testing.TB, repo *ggit.Repository, root, rel, body string, when time.Time) {
	t.Helper()
	WriteTree(t, root, map[string]string{rel: body})

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(rel)
	require.NoError(t, err)
	sig := &object.Signature{Name: "Docs", Email: "docs@example.com", When: when}
	_, err = wt.Commit("update "+rel, &ggit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}
