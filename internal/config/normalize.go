package config

import (
	"fmt"
	"strings"
)

// Normalize canonicalizes loosely written values in place and returns a
// warning for every value it had to rewrite.
func Normalize(cfg *Config) []string {
	var warnings []string
	note := func(field, from, to string) {
		if from != to {
			warnings = append(warnings, fmt.Sprintf("%s: %q normalized to %q", field, from, to))
		}
	}

	bp := NormalizeBasePath(cfg.Site.BasePath)
	note("site.base_path", cfg.Site.BasePath, bp)
	cfg.Site.BasePath = bp

	cfg.Site.APISegment = strings.Trim(strings.TrimSpace(cfg.Site.APISegment), "/")
	cfg.Site.IntroSlug = strings.Trim(strings.TrimSpace(cfg.Site.IntroSlug), "/")
	cfg.Site.TranslationsDir = strings.Trim(strings.TrimSpace(cfg.Site.TranslationsDir), "/")
	cfg.Site.StaticDir = strings.Trim(strings.TrimSpace(cfg.Site.StaticDir), "/")

	cfg.Locales.Default = strings.TrimSpace(cfg.Locales.Default)
	for i := range cfg.Locales.Entries {
		e := &cfg.Locales.Entries[i]
		e.ID = strings.TrimSpace(e.ID)
		e.Tag = strings.TrimSpace(e.Tag)
		e.Dir = strings.TrimSpace(e.Dir)
	}

	for i := range cfg.Site.Sections {
		s := &cfg.Site.Sections[i]
		s.Key = strings.ToLower(strings.TrimSpace(s.Key))
	}

	if cfg.Logging.Level != "" {
		lvl := NormalizeLogLevel(string(cfg.Logging.Level))
		note("logging.level", string(cfg.Logging.Level), string(lvl))
		cfg.Logging.Level = lvl
	}
	if cfg.Logging.Format != "" {
		f := NormalizeLogFormat(string(cfg.Logging.Format))
		note("logging.format", string(cfg.Logging.Format), string(f))
		cfg.Logging.Format = f
	}
	return warnings
}

// NormalizeBasePath returns "" for the site root, otherwise the path with a
// single leading slash and no trailing slash.
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
