package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output          string `short:"o" help:"Output directory (default: output.directory)"`
	Clean           bool   `help:"Remove the output directory before writing"`
	AllowCollisions bool   `help:"Continue when two files derive the same slug"`
	SkipUnchanged   bool   `help:"Skip the build when content is unchanged since the last successful build"`
	Search          bool   `help:"Also build the search index (default: search.enabled)"`
	Concurrency     int    `help:"Locales built in parallel (0 = all)" default:"0"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	a, err := root.open()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := build.NewBuildService(a.svc).WithRecorder(a.rec)
	if a.history != nil {
		svc = svc.WithHead(a.history.Head)
	}
	req := build.BuildRequest{
		OutputDir: a.resolve(b.Output, a.cfg.Output.Directory),
		Options: build.BuildOptions{
			Clean:           b.Clean || a.cfg.Output.Clean,
			AllowCollisions: b.AllowCollisions,
			SkipIfUnchanged: b.SkipUnchanged,
			Search:          b.Search || a.cfg.Search.Enabled,
			SearchIndexDir:  a.resolve("", a.cfg.Search.IndexDir),
			Concurrency:     b.Concurrency,
		},
	}
	result, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}

	out := g.out()
	if result.Skipped {
		_, _ = fmt.Fprintf(out, "Build skipped: %s\n", result.SkipReason)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Build %s %s: %d locales, %d pages (%d fallback) in %s\n",
		result.BuildID, result.Status, result.Locales, result.Pages, result.FallbackPages, result.Duration.Round(time.Millisecond))
	if result.IncludeWarnings > 0 {
		_, _ = fmt.Fprintf(out, "  %d include warning(s); run 'docsite check' for details\n", result.IncludeWarnings)
	}
	if len(result.Collisions) > 0 {
		_, _ = fmt.Fprintf(out, "  %d slug collision(s) allowed\n", len(result.Collisions))
	}
	if req.Options.Search {
		_, _ = fmt.Fprintf(out, "  search index: %d documents\n", result.SearchDocuments)
	}
	_, _ = fmt.Fprintf(out, "Output: %s\n", result.OutputPath)
	return nil
}
