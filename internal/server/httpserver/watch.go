package httpserver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/observability"
	"git.home.luguber.info/inful/docsite/internal/site"
)

const defaultDebounce = 300 * time.Millisecond

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Debounce time.Duration
	// OnReload runs after the content cache was reset, e.g. to rebuild the
	// search index.
	OnReload func(ctx context.Context) error
}

// Watcher resets the content cache when files under any locale root or
// the changelog change.
type Watcher struct {
	svc  *site.Service
	opts WatchOptions
}

// NewWatcher creates a watcher for svc.
func NewWatcher(svc *site.Service, opts WatchOptions) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	return &Watcher{svc: svc, opts: opts}
}

// Run watches until ctx is done. Bursts of events are coalesced into one
// reload; reloads never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	roots := make([]string, 0, len(w.svc.Registry().IDs()))
	for _, loc := range w.svc.Registry().All() {
		roots = append(roots, loc.Dir)
		addDirsRecursive(ctx, fw, loc.Dir)
	}
	changelog := w.svc.Options().ChangelogPath
	if changelog != "" {
		if err := fw.Add(filepath.Dir(changelog)); err != nil {
			observability.WarnContext(ctx, "watch add failed", logfields.Path(changelog), logfields.Error(err))
		}
	}

	relevant := func(name string) bool {
		if name == changelog {
			return true
		}
		for _, r := range roots {
			if name == r || strings.HasPrefix(name, r+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	trigger := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.opts.Debounce, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
	}

	observability.InfoContext(ctx, "Watching content for changes", logfields.Count(len(roots)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(ev.Name) || !relevant(ev.Name) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirsRecursive(ctx, fw, ev.Name)
				}
			}
			observability.DebugContext(ctx, "Content change detected", logfields.Path(ev.Name))
			trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			observability.WarnContext(ctx, "watcher error", logfields.Error(err))
		case <-reload:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	w.svc.Reset()
	if w.opts.OnReload == nil {
		observability.InfoContext(ctx, "Content reloaded")
		return
	}
	if err := w.opts.OnReload(ctx); err != nil {
		observability.WarnContext(ctx, "reload hook failed", logfields.Error(err))
		return
	}
	observability.InfoContext(ctx, "Content reloaded")
}

func addDirsRecursive(ctx context.Context, fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				observability.WarnContext(ctx, "watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports hidden files and editor temp or swap files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"), strings.HasSuffix(base, ".tmp"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
