package httpserver

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

func slugKeys(t *testing.T, slugs [][]string) []string {
	t.Helper()
	out := make([]string, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, docs.SlugKey(s))
	}
	return out
}

func TestWatcherReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, root := newTestService(t)
	slugs, err := svc.ListSlugs("en")
	require.NoError(t, err)
	assert.NotContains(t, slugKeys(t, slugs), "guides/new")

	var reloads atomic.Int32
	reloaded := make(chan struct{}, 8)
	w := NewWatcher(svc, WatchOptions{
		Debounce: 20 * time.Millisecond,
		OnReload: func(context.Context) error {
			reloads.Add(1)
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Give the watcher time to register its directories.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(root, "docs", "guides", "new.md"), "# New\n")
	writeFile(t, filepath.Join(root, "docs", "guides", "new.md~"), "backup")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after content change")
	}

	slugs, err = svc.ListSlugs("en")
	require.NoError(t, err)
	assert.Contains(t, slugKeys(t, slugs), "guides/new")
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}

func TestWatcherNewDirectoryIsWatched(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, root := newTestService(t)
	reloaded := make(chan struct{}, 8)
	w := NewWatcher(svc, WatchOptions{
		Debounce: 20 * time.Millisecond,
		OnReload: func(context.Context) error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return errors.New("index rebuild failed")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(root, "docs", "ref", "index.md"), "# Ref\n")
	require.Eventually(t, func() bool {
		slugs, err := svc.ListSlugs("en")
		return err == nil && containsKey(slugs, "ref")
	}, 5*time.Second, 50*time.Millisecond)
}

func containsKey(slugs [][]string, key string) bool {
	for _, s := range slugs {
		if docs.SlugKey(s) == key {
			return true
		}
	}
	return false
}

func TestShouldIgnoreEvent(t *testing.T) {
	for _, name := range []string{".hidden.md", "a.md~", "a.md.swp", "x.tmp", "#a.md#"} {
		assert.True(t, shouldIgnoreEvent(filepath.Join("docs", name)), name)
	}
	assert.False(t, shouldIgnoreEvent("docs/a.md"))
}
