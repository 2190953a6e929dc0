package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "docsite.yaml"

// envFiles are loaded, in order, before the configuration is expanded.
// Variables already present in the environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

// Load reads, expands, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}
	loadEnvFiles(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, foundationerrors.ConfigError("configuration file not found").
				WithCause(err).
				WithPath(configPath).
				Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "read configuration file").
			WithPath(configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "resolve configuration directory").Build()
	}
	cfg.baseDir = abs
	return cfg, nil
}

// Parse decodes configuration bytes (after ${VAR} expansion) and runs the
// normalize, default and validate passes. Relative paths resolve against
// the working directory until Load sets the base directory.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "parse configuration").
			Fatal().
			Build()
	}

	for _, w := range Normalize(&cfg) {
		slog.Warn("config normalization", slog.String("detail", w))
	}
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads .env files from dir and the working directory.
func loadEnvFiles(dir string) {
	seen := make(map[string]bool)
	for _, base := range []string{dir, "."} {
		for _, name := range envFiles {
			p := filepath.Clean(filepath.Join(base, name))
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := godotenv.Load(p); err != nil {
				slog.Warn("failed to load env file", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			slog.Debug("loaded environment file", slog.String("path", p))
		}
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if configPath == "" {
		configPath = DefaultPath
	}
	if _, err := os.Stat(configPath); err == nil && !force {
		return foundationerrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "marshal example configuration").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "write configuration file").
			WithPath(configPath).
			Build()
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	return &Config{
		Version: CurrentVersion,
		Site: SiteConfig{
			Title:     "Project Documentation",
			RepoRoot:  ".",
			Changelog: "CHANGELOG.md",
			Sections: []SectionConfig{
				{Key: "benchmark", Title: "Benchmark", Href: "/benchmark"},
				{Key: "playground", Title: "Playground", Href: "/playground"},
			},
		},
		Locales: LocalesConfig{
			Default: "en",
			Entries: []LocaleEntry{
				{ID: "en", Label: "English", Dir: "docs"},
				{ID: "zh", Label: "简体中文", Dir: "docs/i18n/zh", Tag: "zh-Hans"},
			},
		},
		Strings: map[string]map[string]string{
			"en": {
				"documentation":    "Documentation",
				"api":              "API Reference",
				"changelog_notice": "This changelog is maintained in English only.",
			},
			"zh": {
				"documentation":    "文档",
				"api":              "API 参考",
				"changelog_notice": "更新日志仅提供英文版本。",
			},
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Metrics: MetricsConfig{Enabled: false, Path: "/metrics"},
		Server:  ServerConfig{Addr: ":8080"},
		Search:  SearchConfig{Enabled: true, IndexDir: ".docsite/search.bleve", MaxResults: 20},
		Output:  OutputConfig{Directory: "./site", Clean: true},
	}
}
