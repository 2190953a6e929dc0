// Package commands implements the docsite subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/git"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// LogLevelEnv overrides the configured log level.
const LogLevelEnv = "DOCSITE_LOG_LEVEL"

// Global is shared state passed to every command.
type Global struct {
	// Out receives command output meant for the user.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI is the root command line.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"docsite.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `help:"Log format (text or json); overrides the configuration"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render every locale into static JSON payloads"`
	Serve ServeCmd `cmd:"" help:"Serve the content API"`
	Check CheckCmd `cmd:"" help:"Report slug collisions, include failures and broken links"`
	Paths PathsCmd `cmd:"" help:"Print the routable paths of each locale"`
	Index IndexCmd `cmd:"" help:"Build the search index"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration and sample content"`

	// level is set when --verbose or the environment chose the log level.
	level       config.LogLevel `kong:"-"`
	levelPinned bool            `kong:"-"`
}

// AfterApply runs after flag parsing; it installs the default logger once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	c.level = config.LogLevelInfo
	if raw := os.Getenv(LogLevelEnv); raw != "" {
		c.level = config.NormalizeLogLevel(raw)
		c.levelPinned = true
	}
	if c.Verbose {
		c.level = config.LogLevelDebug
		c.levelPinned = true
	}
	setupLogging(c.level, config.NormalizeLogFormat(c.LogFormat))
	return nil
}

func setupLogging(level config.LogLevel, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	var h slog.Handler
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// app is a loaded configuration with the content service built from it.
type app struct {
	cfg     *config.Config
	svc     *site.Service
	rec     metrics.Recorder
	promReg *prom.Registry
	history *git.History
}

// open loads the configuration and wires the content service.
func (c *CLI) open() (*app, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	level, format := cfg.Logging.Level, cfg.Logging.Format
	if c.levelPinned {
		level = c.level
	}
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	setupLogging(level, format)

	registry, err := cfg.LocaleRegistry()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, rec: metrics.NoopRecorder{}}
	if cfg.Metrics.Enabled {
		a.promReg = prom.NewRegistry()
		a.rec = metrics.NewPrometheusRecorder(a.promReg)
	}
	options := []site.Option{site.WithRecorder(a.rec)}
	if cfg.Site.GitLastUpdated {
		root, err := cfg.RepoRoot()
		if err != nil {
			return nil, err
		}
		h, err := git.Open(root)
		if err != nil {
			slog.Warn("git history unavailable, lastUpdated disabled", logfields.Error(err))
		} else {
			a.history = h
			options = append(options, site.WithHistory(h))
		}
	}

	a.svc, err = site.FromConfig(cfg, registry, options...)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// resolve makes a configured path absolute against the configuration
// directory. A non-empty flag value wins and is taken as given.
func (a *app) resolve(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if filepath.IsAbs(configured) || a.cfg.BaseDir() == "" {
		return configured
	}
	return filepath.Join(a.cfg.BaseDir(), configured)
}
