package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/linkverify"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	External bool          `help:"Also check external links over HTTP"`
	Timeout  time.Duration `help:"Timeout per external request" default:"10s"`
	Retries  int           `help:"Retries for transiently failing external links" default:"2"`
	Backoff  string        `help:"Retry backoff: fixed, linear or exponential" default:"linear"`
	Rate     float64       `help:"Maximum external requests per second (0 for unlimited)" default:"10"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	a, err := root.open()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := g.out()
	problems := 0
	for _, id := range a.svc.Registry().IDs() {
		collisions, err := a.svc.Collisions(id)
		if err != nil {
			return err
		}
		for _, col := range collisions {
			problems++
			_, _ = fmt.Fprintf(out, "%s\tcollision\t/%s\t%s\n", id, docs.SlugKey(col.Slug), strings.Join(col.Paths, ", "))
		}

		slugs, err := a.svc.ListSlugs(id)
		if err != nil {
			return err
		}
		for _, slug := range slugs {
			doc, found, err := a.svc.ReadDocument(id, slug)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			for _, w := range doc.IncludeWarnings {
				problems++
				_, _ = fmt.Fprintf(out, "%s\tinclude\t%s\t%s: %s\n", id, doc.Path, w.Path, w.Reason)
			}
		}
	}

	verifier := linkverify.NewVerifier(a.svc, linkverify.Options{
		External:       c.External,
		RequestTimeout: c.Timeout,
		Recorder:       a.rec,
		Retry:          retry.NewPolicy(retry.ParseBackoffMode(c.Backoff), time.Second, 30*time.Second, c.Retries),
		// Rate limits external HEAD requests across all locales.
		RequestsPerSecond: c.Rate,
	})
	broken, err := verifier.VerifyAll(ctx)
	if err != nil {
		return err
	}
	for _, b := range broken {
		problems++
		detail := b.Reason
		if b.Status != 0 {
			detail = fmt.Sprintf("%s (HTTP %d)", b.Reason, b.Status)
		}
		_, _ = fmt.Fprintf(out, "%s\tlink\t%s\t%s: %s\n", b.Locale, b.Source, b.URL, detail)
	}

	if problems > 0 {
		return foundationerrors.ValidationError(fmt.Sprintf("check found %d problem(s)", problems)).
			WithContext("problems", problems).
			Build()
	}
	_, _ = fmt.Fprintln(out, "No problems found")
	return nil
}
