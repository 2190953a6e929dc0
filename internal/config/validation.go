package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// reservedGroupKeys cannot be used as standalone section keys.
var reservedGroupKeys = map[string]bool{"documentation": true, "api": true}

// Validate checks a defaulted configuration. The first problem found is
// returned as a fatal configuration error.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateLocales,
		validateSite,
		validateServer,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return foundationerrors.ConfigError(fmt.Sprintf(format, args...)).
		WithContext("field", field).
		Build()
}

func validateVersion(cfg *Config) error {
	if cfg.Version != CurrentVersion {
		return invalid("version", "unsupported configuration version %q (expected %q)", cfg.Version, CurrentVersion)
	}
	return nil
}

func validateLocales(cfg *Config) error {
	if len(cfg.Locales.Entries) == 0 {
		return invalid("locales.entries", "at least one locale must be configured")
	}
	seen := make(map[string]bool, len(cfg.Locales.Entries))
	for i, e := range cfg.Locales.Entries {
		field := fmt.Sprintf("locales.entries[%d]", i)
		switch {
		case e.ID == "":
			return invalid(field+".id", "locale id cannot be empty")
		case strings.ContainsAny(e.ID, "/\\ "):
			return invalid(field+".id", "locale id %q must not contain slashes or spaces", e.ID)
		case seen[e.ID]:
			return invalid(field+".id", "duplicate locale id %q", e.ID)
		case e.Dir == "":
			return invalid(field+".dir", "locale %q has no content directory", e.ID)
		}
		if _, err := language.Parse(e.Tag); err != nil {
			return invalid(field+".tag", "locale %q has invalid language tag %q: %v", e.ID, e.Tag, err)
		}
		seen[e.ID] = true
	}
	if cfg.Locales.Default == "" {
		return invalid("locales.default", "default locale must be set when more than one locale is configured")
	}
	if !seen[cfg.Locales.Default] {
		return invalid("locales.default", "default locale %q is not among the configured locales", cfg.Locales.Default)
	}
	return nil
}

func validateSite(cfg *Config) error {
	if strings.Contains(cfg.Site.APISegment, "/") {
		return invalid("site.api_segment", "api segment %q must be a single path segment", cfg.Site.APISegment)
	}
	seen := make(map[string]bool, len(cfg.Site.Sections))
	for i, s := range cfg.Site.Sections {
		field := fmt.Sprintf("site.sections[%d]", i)
		switch {
		case s.Key == "":
			return invalid(field+".key", "section key cannot be empty")
		case reservedGroupKeys[s.Key]:
			return invalid(field+".key", "section key %q is reserved", s.Key)
		case seen[s.Key]:
			return invalid(field+".key", "duplicate section key %q", s.Key)
		case s.Href == "":
			return invalid(field+".href", "section %q has no href", s.Key)
		}
		seen[s.Key] = true
	}
	return nil
}

func validateServer(cfg *Config) error {
	if _, err := time.ParseDuration(cfg.Server.ReadTimeout); err != nil {
		return invalid("server.read_timeout", "invalid duration %q", cfg.Server.ReadTimeout)
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return invalid("metrics.path", "metrics path %q must start with /", cfg.Metrics.Path)
	}
	return nil
}
