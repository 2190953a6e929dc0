// Package docs locates content files per locale and derives their slugs
// and sidebar metadata.
package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/locale"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// ReservedDirs are subdirectories of the default locale's root that hold
// other locales' content or static assets.
type ReservedDirs struct {
	Translations string
	Static       string
}

// DefaultReservedDirs matches the configuration defaults.
var DefaultReservedDirs = ReservedDirs{Translations: "i18n", Static: "static"}

// ListContentFiles walks root and returns the absolute paths of every
// Markdown/MDX file. Readme files and hidden entries are skipped. When
// isDefault is set the reserved subdirectories are skipped as well, along
// with any directory listed in exclude.
func ListContentFiles(root string, isDefault bool, reserved ReservedDirs, exclude ...string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "resolve content root").
			WithPath(root).
			Build()
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		cause := fmt.Errorf("%w: %s", derrors.ErrContentRootNotFound, absRoot)
		return nil, foundationerrors.ConfigError("content root is missing or not a directory").
			WithCause(cause).
			WithPath(absRoot).
			Build()
	}

	skipDirs := make(map[string]bool)
	if isDefault {
		for _, d := range []string{reserved.Translations, reserved.Static} {
			if d != "" {
				skipDirs[filepath.Join(absRoot, filepath.FromSlash(d))] = true
			}
		}
		for _, d := range exclude {
			if d != "" && d != absRoot {
				skipDirs[filepath.Clean(d)] = true
			}
		}
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absRoot {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") || skipDirs[path] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !IsContentFile(name) || isReadme(name) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, foundationerrors.WrapError(fmt.Errorf("%w: %w", derrors.ErrContentWalkFailed, err), foundationerrors.CategoryFileSystem, "walk content root").
			WithPath(absRoot).
			Build()
	}
	return files, nil
}

// Locator lists content files for the locales of a registry.
type Locator struct {
	registry *locale.Registry
	reserved ReservedDirs
}

// NewLocator creates a locator.
func NewLocator(registry *locale.Registry, reserved ReservedDirs) *Locator {
	return &Locator{registry: registry, reserved: reserved}
}

// Registry returns the locale registry the locator was built with.
func (l *Locator) Registry() *locale.Registry { return l.registry }

// ListContentFiles lists the content files of one locale. Roots of other
// locales nested inside the default root are never attributed to it.
func (l *Locator) ListContentFiles(localeID string) ([]string, error) {
	loc, ok := l.registry.Get(localeID)
	if !ok {
		return nil, foundationerrors.NotFoundError("unknown locale").
			WithLocale(localeID).
			Build()
	}
	isDefault := l.registry.IsDefault(localeID)
	var exclude []string
	if isDefault {
		for _, other := range l.registry.All()[1:] {
			exclude = append(exclude, other.Dir)
		}
	}
	files, err := ListContentFiles(loc.Dir, isDefault, l.reserved, exclude...)
	if err != nil {
		return nil, err
	}
	slog.Debug("Content files listed", logfields.Locale(localeID), logfields.Path(loc.Dir), logfields.Count(len(files)))
	return files, nil
}

// IsContentFile reports whether name has a Markdown or MDX extension.
func IsContentFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

func isReadme(name string) bool {
	lower := strings.ToLower(name)
	return lower == "readme.md" || lower == "readme.mdx"
}
