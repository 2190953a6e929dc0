package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/search"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Dir string `short:"d" help:"Index directory (default: search.index_dir)"`
}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	a, err := root.open()
	if err != nil {
		return err
	}
	dir := a.resolve(i.Dir, a.cfg.Search.IndexDir)
	idx, err := search.Create(dir)
	if err != nil {
		return err
	}
	n, err := search.Build(context.Background(), a.svc, idx, a.rec)
	if cerr := idx.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Indexed %d documents into %s\n", n, dir)
	return nil
}
