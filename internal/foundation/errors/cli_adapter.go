package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes returned by docsite commands.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2 // validation: bad flags or failed checks
	ExitNotFound = 4
	ExitConfig   = 7
	ExitSearch   = 8
	ExitInternal = 10
	ExitContent  = 11 // docs, render and filesystem errors
	ExitRuntime  = 12
)

// CLIErrorAdapter turns command errors into a stderr message and an exit
// code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter returns an adapter writing to stderr. A nil logger uses
// slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr, exit: os.Exit}
}

// ExitCodeFor maps an error to the process exit code.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCategory(err) {
	case CategoryValidation:
		return ExitUsage
	case CategoryNotFound:
		return ExitNotFound
	case CategoryConfig:
		return ExitConfig
	case CategorySearch:
		return ExitSearch
	case CategoryDocs, CategoryRender, CategoryFileSystem:
		return ExitContent
	case CategoryRuntime:
		return ExitRuntime
	case CategoryInternal:
		if _, ok := AsClassified(err); ok {
			return ExitInternal
		}
	}
	return ExitFailure
}

// FormatError renders err for the terminal. Without verbose output internal
// failures are summarized; everything else shows its location and cause.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	if !ok {
		return "Error: " + err.Error()
	}
	if a.verbose {
		return c.Error()
	}
	if c.category == CategoryInternal || c.category == CategoryRuntime {
		return "Internal error occurred (use -v for details)"
	}
	msg := "Error: "
	if loc := c.Location(); loc != "" {
		msg += loc + ": "
	}
	msg += c.message
	if c.cause != nil {
		msg += fmt.Sprintf(": %v", c.cause)
	}
	return msg
}

// HandleError prints err and exits with its code. Fatal and unclassified
// errors are logged as well; with verbose output every error is.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.verbose || GetSeverity(err) == SeverityFatal || GetCategory(err) == CategoryInternal {
		a.logError(err)
	}
	fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) logError(err error) {
	c, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", slog.String("error", err.Error()))
		return
	}
	attrs := []slog.Attr{slog.String("category", string(c.category))}
	for k, v := range c.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if c.cause != nil {
		attrs = append(attrs, slog.String("error", c.cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), levelFor(c.severity), c.message, attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	if severity == SeverityWarning {
		return slog.LevelWarn
	}
	return slog.LevelError
}
