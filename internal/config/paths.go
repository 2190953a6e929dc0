package config

import (
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/locale"
)

// RepoRoot returns the absolute repository root.
func (c *Config) RepoRoot() (string, error) {
	root := c.Site.RepoRoot
	if !filepath.IsAbs(root) {
		base := c.baseDir
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "resolve working directory").Build()
			}
			base = wd
		}
		root = filepath.Join(base, root)
	}
	return filepath.Clean(root), nil
}

// ChangelogPath returns the absolute path of the changelog file.
func (c *Config) ChangelogPath() (string, error) {
	root, err := c.RepoRoot()
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(c.Site.Changelog) {
		return c.Site.Changelog, nil
	}
	return filepath.Join(root, c.Site.Changelog), nil
}

// LocaleRegistry builds the locale registry with absolute content roots.
func (c *Config) LocaleRegistry() (*locale.Registry, error) {
	root, err := c.RepoRoot()
	if err != nil {
		return nil, err
	}
	locales := make([]locale.Locale, 0, len(c.Locales.Entries))
	for _, e := range c.Locales.Entries {
		dir := e.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		tag, err := language.Parse(e.Tag)
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid locale tag").
				Fatal().
				WithLocale(e.ID).
				Build()
		}
		locales = append(locales, locale.Locale{
			ID:              e.ID,
			Label:           e.Label,
			Dir:             filepath.Clean(dir),
			Tag:             tag,
			ChangelogNotice: e.ChangelogNotice,
		})
	}
	return locale.NewRegistry(c.Locales.Default, locales)
}
