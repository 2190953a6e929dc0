package git

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// History answers last-modified questions for files of one repository.
// Results are memoized; it is safe for concurrent use.
type History struct {
	repo *ggit.Repository
	root string

	mu    sync.Mutex
	cache map[string]*time.Time
}

// Open opens the repository containing path, searching parent directories
// for the .git directory.
func Open(path string) (*History, error) {
	repo, err := ggit.PlainOpenWithOptions(path, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "open git repository").
			WithPath(path).
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "open git worktree").
			WithPath(path).
			Build()
	}
	return &History{repo: repo, root: wt.Filesystem.Root(), cache: make(map[string]*time.Time)}, nil
}

// Root returns the worktree root.
func (h *History) Root() string { return h.root }

// Head returns the hash of the commit HEAD points to.
func (h *History) Head() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref, err := h.repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// LastUpdated returns the committer time of the newest commit touching
// absPath. Untracked files and files outside the worktree report nil.
func (h *History) LastUpdated(absPath string) *time.Time {
	rel, err := filepath.Rel(h.root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.cache[rel]; ok {
		return t
	}
	t := h.lookup(rel)
	h.cache[rel] = t
	return t
}

func (h *History) lookup(rel string) *time.Time {
	ref, err := h.repo.Head()
	if err != nil {
		return nil
	}
	iter, err := h.repo.Log(&ggit.LogOptions{From: ref.Hash(), FileName: &rel})
	if err != nil {
		slog.Debug("git log failed", logfields.Path(rel), logfields.Error(err))
		return nil
	}
	defer iter.Close()

	var found *time.Time
	err = iter.ForEach(func(c *object.Commit) error {
		when := c.Committer.When
		found = &when
		return storer.ErrStop
	})
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("git log iteration failed", logfields.Path(rel), logfields.Error(err))
	}
	return found
}
