package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/build"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// PathsCmd implements the 'paths' command.
type PathsCmd struct {
	Locale string `short:"l" help:"Only print this locale"`
	JSON   bool   `help:"Print JSON keyed by locale"`
}

func (p *PathsCmd) Run(g *Global, root *CLI) error {
	a, err := root.open()
	if err != nil {
		return err
	}
	ids := a.svc.Registry().IDs()
	if p.Locale != "" {
		if _, ok := a.svc.Registry().Get(p.Locale); !ok {
			return foundationerrors.ValidationError(fmt.Sprintf("unknown locale %q", p.Locale)).Build()
		}
		ids = []string{p.Locale}
	}

	all := make(map[string][]build.PathEntry, len(ids))
	for _, id := range ids {
		slugs, fallback, err := a.svc.ServedSlugs(id)
		if err != nil {
			return err
		}
		entries := make([]build.PathEntry, 0, len(slugs))
		for i, s := range slugs {
			entries = append(entries, build.PathEntry{Slug: s, Href: a.svc.Href(id, s), Fallback: fallback[i]})
		}
		all[id] = entries
	}

	out := g.out()
	if p.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}
	for _, id := range ids {
		for _, e := range all[id] {
			marker := ""
			if e.Fallback {
				marker = "\t(fallback)"
			}
			_, _ = fmt.Fprintf(out, "%s\t%s%s\n", id, e.Href, marker)
		}
	}
	return nil
}
