package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/httpserver"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `short:"a" help:"Listen address (default: server.addr)"`
	Watch bool   `short:"w" help:"Reload content when files change (default: server.watch)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	a, err := root.open()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	readTimeout, err := time.ParseDuration(a.cfg.Server.ReadTimeout)
	if err != nil {
		return err
	}
	opts := httpserver.Options{
		Addr:        a.cfg.Server.Addr,
		ReadTimeout: readTimeout,
		MaxResults:  a.cfg.Search.MaxResults,
		Recorder:    a.rec,
	}
	if s.Addr != "" {
		opts.Addr = s.Addr
	}
	if a.promReg != nil {
		opts.MetricsHandler = metrics.HTTPHandler(a.promReg)
		opts.MetricsPath = a.cfg.Metrics.Path
	}

	var live *search.Live
	if a.cfg.Search.Enabled {
		idx, err := memoryIndex(ctx, a)
		if err != nil {
			return err
		}
		live = search.NewLive(idx)
		defer func() { _ = live.Close() }()
		opts.Search = live
	}

	srv := httpserver.New(a.svc, opts)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Serving on http://%s\n", srv.Addr())

	watchErr := make(chan error, 1)
	if s.Watch || a.cfg.Server.Watch {
		w := httpserver.NewWatcher(a.svc, httpserver.WatchOptions{
			OnReload: func(ctx context.Context) error {
				if live == nil {
					return nil
				}
				idx, err := memoryIndex(ctx, a)
				if err != nil {
					return err
				}
				live.Swap(idx)
				return nil
			},
		})
		go func() { watchErr <- w.Run(ctx) }()
	}

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err = <-watchErr:
		if err != nil {
			slog.Error("watcher stopped", logfields.Error(err))
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if stopErr := srv.Stop(stopCtx); stopErr != nil {
		return stopErr
	}
	return err
}

// memoryIndex builds an in-memory search index of every served page.
func memoryIndex(ctx context.Context, a *app) (*search.Index, error) {
	idx, err := search.Create("")
	if err != nil {
		return nil, err
	}
	if _, err := search.Build(ctx, a.svc, idx, a.rec); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return idx, nil
}
