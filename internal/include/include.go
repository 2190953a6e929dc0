// Package include expands <!-- INCLUDE path --> directives in content
// bodies. Expansion is a single level: included text is not scanned again.
package include

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

var directive = regexp.MustCompile(`<!--\s*INCLUDE\s+(\S+?)\s*-->`)

// ReadFunc reads a file. os.ReadFile satisfies it.
type ReadFunc func(path string) ([]byte, error)

// Warning records a directive that could not be expanded.
type Warning struct {
	Directive string `json:"directive"`
	Path      string `json:"path"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

func (w Warning) Error() string {
	return "include " + w.Path + ": " + w.Err.Error()
}

func (w Warning) Unwrap() error { return w.Err }

// Result is the expanded content and the directives left unexpanded.
type Result struct {
	Content  string
	Warnings []Warning
}

// Resolve replaces every directive in content with the raw contents of the
// referenced file, resolved against the directory of sourceFile. A target
// that cannot be read leaves its directive in place and adds a warning.
func Resolve(content, sourceFile string, read ReadFunc) Result {
	if read == nil {
		read = os.ReadFile
	}
	matches := directive.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return Result{Content: content}
	}

	dir := filepath.Dir(sourceFile)
	var (
		b        strings.Builder
		warnings []Warning
		last     int
	)
	for _, m := range matches {
		b.WriteString(content[last:m[0]])
		last = m[1]

		raw := content[m[0]:m[1]]
		target := filepath.Join(dir, filepath.FromSlash(content[m[2]:m[3]]))
		data, err := read(target)
		if err != nil {
			slog.Warn("Include directive not expanded",
				logfields.File(sourceFile),
				logfields.Path(target),
				logfields.Error(err))
			warnings = append(warnings, Warning{Directive: raw, Path: target, Reason: err.Error(), Err: err})
			b.WriteString(raw)
			continue
		}
		b.Write(data)
	}
	b.WriteString(content[last:])
	return Result{Content: b.String(), Warnings: warnings}
}

// ResolveFile reads sourceFile and resolves its directives from disk.
func ResolveFile(sourceFile string) (Result, error) {
	data, err := os.ReadFile(sourceFile)
	if err != nil {
		return Result{}, err
	}
	return Resolve(string(data), sourceFile, os.ReadFile), nil
}
