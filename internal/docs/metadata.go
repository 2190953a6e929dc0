package docs

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/locale"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultOrder sorts documents without an explicit position after every
// positioned one.
const DefaultOrder float64 = 9999

// Frontmatter keys recognized by the extractor. Any other key is passed
// through untouched.
const (
	KeyTitle           = "title"
	KeySidebarLabel    = "sidebar_label"
	KeySidebarPosition = "sidebar_position"
)

// DocumentMetadata is the sidebar-facing description of one content file.
type DocumentMetadata struct {
	Title   string   `json:"title"`
	Slug    []string `json:"slug"`
	Order   float64  `json:"order"`
	IsIndex bool     `json:"isIndex"`
	// Path is the absolute source file.
	Path string `json:"-"`
}

// ReadFunc reads a file. os.ReadFile satisfies it.
type ReadFunc func(path string) ([]byte, error)

// Extractor reads metadata from content files.
type Extractor struct {
	read ReadFunc
}

// NewExtractor creates an extractor; a nil read function means os.ReadFile.
func NewExtractor(read ReadFunc) *Extractor {
	if read == nil {
		read = os.ReadFile
	}
	return &Extractor{read: read}
}

// ReadMetadata reads filePath, which must live under the locale's root.
func (e *Extractor) ReadMetadata(loc locale.Locale, filePath string) (DocumentMetadata, error) {
	meta, _, err := e.Read(loc.Dir, filePath)
	return meta, err
}

// Read returns the metadata together with the parsed document so callers
// needing the body do not read the file twice.
func (e *Extractor) Read(root, filePath string) (DocumentMetadata, frontmatter.Document, error) {
	content, err := e.read(filePath)
	if err != nil {
		return DocumentMetadata{}, frontmatter.Document{}, foundationerrors.WrapError(
			fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, filePath, err),
			foundationerrors.CategoryFileSystem, "read content file").
			WithPath(filePath).
			Build()
	}
	slug, err := DeriveSlug(root, filePath)
	if err != nil {
		return DocumentMetadata{}, frontmatter.Document{}, foundationerrors.WrapError(err, foundationerrors.CategoryDocs, "derive slug").
			WithPath(filePath).
			Build()
	}
	doc := frontmatter.Parse(content)
	if doc.Malformed {
		slog.Debug("Malformed frontmatter, using heuristics", logfields.Path(filePath), logfields.Error(doc.Err))
	}
	return BuildMetadata(filePath, slug, doc), doc, nil
}

// BuildMetadata resolves title, order and index flag for a parsed document.
func BuildMetadata(filePath string, slug []string, doc frontmatter.Document) DocumentMetadata {
	meta := DocumentMetadata{
		Slug:    slug,
		Order:   DefaultOrder,
		IsIndex: strings.HasPrefix(strings.ToLower(filepath.Base(filePath)), "index."),
		Path:    filePath,
	}

	if t, ok := doc.String(KeyTitle); ok {
		meta.Title = t
	} else if t, ok := doc.String(KeySidebarLabel); ok {
		meta.Title = t
	} else if t, ok := FirstHeading(doc.Body); ok {
		meta.Title = t
	} else {
		last := StripContentExt(filepath.Base(filePath))
		if len(slug) > 0 {
			last = slug[len(slug)-1]
		}
		meta.Title = Humanize(last)
	}

	if n, ok := doc.Number(KeySidebarPosition); ok {
		meta.Order = n
	}
	return meta
}

var h1Pattern = regexp.MustCompile(`^#\s+(.+?)(?:\s+#+)?\s*$`)

// FirstHeading returns the text of the first level-1 ATX heading outside
// fenced code blocks.
func FirstHeading(body []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var fence string
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}
		if m := h1Pattern.FindStringSubmatch(line); m != nil {
			if t := strings.TrimSpace(m[1]); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// Humanize turns a path segment into a title: hyphens and underscores become
// spaces and every word gets an upper-case initial.
func Humanize(segment string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Und, cases.NoLower).String(s)
}
