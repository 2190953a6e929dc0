package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/config"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force     bool `help:"Overwrite an existing configuration file"`
	NoSamples bool `help:"Do not create sample pages"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	out := g.out()
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	if i.NoSamples {
		return nil
	}

	example := config.Example()
	base := filepath.Join(filepath.Dir(root.Config), example.Site.RepoRoot)
	for _, e := range example.Locales.Entries {
		target := filepath.Join(base, e.Dir, "index.md")
		created, err := writeSample(target, e.Label)
		if err != nil {
			return err
		}
		if created {
			_, _ = fmt.Fprintf(out, "Created %s\n", target)
		}
	}
	return nil
}

// writeSample writes a home page unless one already exists.
func writeSample(target, title string) (bool, error) {
	if _, err := os.Stat(target); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "stat sample page").
			WithPath(target).
			Build()
	}

	body := fmt.Sprintf("# %s\n\nStart writing your documentation here.\n\n## Next steps\n\nAdd Markdown files next to this page; each one becomes a page in the sidebar.\n", title)
	content, err := frontmatter.Compose(map[string]any{"title": title, "sidebar_position": 0}, []byte(body))
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create content directory").
			WithPath(filepath.Dir(target)).
			Build()
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return false, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "write sample page").
			WithPath(target).
			Build()
	}
	return true, nil
}
