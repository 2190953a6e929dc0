package config

// CurrentVersion is the configuration schema version written by Init.
const CurrentVersion = "1"

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}

	s := &cfg.Site
	if s.RepoRoot == "" {
		s.RepoRoot = "."
	}
	if s.Changelog == "" {
		s.Changelog = "CHANGELOG.md"
	}
	if s.TranslationsDir == "" {
		s.TranslationsDir = "i18n"
	}
	if s.StaticDir == "" {
		s.StaticDir = "static"
	}
	if s.IntroSlug == "" {
		s.IntroSlug = "intro"
	}
	if s.APISegment == "" {
		s.APISegment = "api"
	}

	if cfg.Locales.Default == "" && len(cfg.Locales.Entries) == 1 {
		cfg.Locales.Default = cfg.Locales.Entries[0].ID
	}
	for i := range cfg.Locales.Entries {
		e := &cfg.Locales.Entries[i]
		if e.Label == "" {
			e.Label = e.ID
		}
		if e.Tag == "" {
			e.Tag = e.ID
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == "" {
		cfg.Server.ReadTimeout = "15s"
	}
	if cfg.Search.IndexDir == "" {
		cfg.Search.IndexDir = ".docsite/search.bleve"
	}
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = 20
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "site"
	}
}
