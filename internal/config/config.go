package config

// Config is the docsite configuration file (docsite.yaml).
type Config struct {
	Version string                       `yaml:"version"`
	Site    SiteConfig                   `yaml:"site"`
	Locales LocalesConfig                `yaml:"locales"`
	Strings map[string]map[string]string `yaml:"strings,omitempty"`
	Logging LoggingConfig                `yaml:"logging,omitempty"`
	Metrics MetricsConfig                `yaml:"metrics,omitempty"`
	Server  ServerConfig                 `yaml:"server,omitempty"`
	Search  SearchConfig                 `yaml:"search,omitempty"`
	Output  OutputConfig                 `yaml:"output,omitempty"`

	// baseDir is the directory containing the loaded file; a relative
	// repo_root is resolved against it.
	baseDir string
}

// SiteConfig describes the content tree and how it is exposed.
type SiteConfig struct {
	Title string `yaml:"title"`
	// BasePath is prefixed to every generated href ("" or "/docs").
	BasePath string `yaml:"base_path,omitempty"`
	// RepoRoot is the repository root; locale dirs and the changelog are relative to it.
	RepoRoot  string `yaml:"repo_root,omitempty"`
	Changelog string `yaml:"changelog,omitempty"`
	// TranslationsDir and StaticDir are relative to the default locale's root
	// and are skipped when that locale is scanned.
	TranslationsDir string          `yaml:"translations_dir,omitempty"`
	StaticDir       string          `yaml:"static_dir,omitempty"`
	IntroSlug       string          `yaml:"intro_slug,omitempty"`
	APISegment      string          `yaml:"api_segment,omitempty"`
	GitLastUpdated  bool            `yaml:"git_last_updated,omitempty"`
	Sections        []SectionConfig `yaml:"sections,omitempty"`
}

// SectionConfig is a standalone top-level navigation group without children.
type SectionConfig struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title,omitempty"`
	Href  string `yaml:"href"`
}

// LocalesConfig lists the configured locales and names the default one.
type LocalesConfig struct {
	Default string        `yaml:"default"`
	Entries []LocaleEntry `yaml:"entries"`
}

// LocaleEntry is one configured locale.
type LocaleEntry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label,omitempty"`
	// Dir is the content root, relative to site.repo_root.
	Dir string `yaml:"dir"`
	// Tag is a BCP 47 tag; defaults to ID.
	Tag             string `yaml:"tag,omitempty"`
	ChangelogNotice string `yaml:"changelog_notice,omitempty"`
}

// MetricsConfig toggles the Prometheus recorder and endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// ServerConfig configures `docsite serve`.
type ServerConfig struct {
	Addr  string `yaml:"addr,omitempty"`
	Watch bool   `yaml:"watch,omitempty"`
	// ReadTimeout is a Go duration string.
	ReadTimeout string `yaml:"read_timeout,omitempty"`
}

// SearchConfig configures the bleve index.
type SearchConfig struct {
	Enabled    bool   `yaml:"enabled"`
	IndexDir   string `yaml:"index_dir,omitempty"`
	MaxResults int    `yaml:"max_results,omitempty"`
}

// OutputConfig configures the static build output.
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
	Clean     bool   `yaml:"clean,omitempty"`
}

// BaseDir returns the directory the configuration was loaded from.
func (c *Config) BaseDir() string { return c.baseDir }

// UIStrings returns the UI strings for a locale merged over the default
// locale's strings.
func (c *Config) UIStrings(localeID string) map[string]string {
	out := make(map[string]string)
	for k, v := range c.Strings[c.Locales.Default] {
		out[k] = v
	}
	for k, v := range c.Strings[localeID] {
		out[k] = v
	}
	return out
}
