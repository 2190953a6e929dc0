package docs

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
)

// DeriveSlug converts a content file path into its slug: the path relative
// to root, split on separators, with the Markdown extension stripped and a
// final "index" segment dropped. An empty slug is the locale's home page.
func DeriveSlug(root, filePath string) ([]string, error) {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s is not under %s", derrors.ErrInvalidRelativePath, filePath, root)
	}

	segments := strings.Split(rel, string(filepath.Separator))
	last := len(segments) - 1
	segments[last] = StripContentExt(segments[last])
	if segments[last] == "index" {
		segments = segments[:last]
	}
	return segments, nil
}

// StripContentExt removes a trailing .md or .mdx extension (any case).
func StripContentExt(name string) string {
	if IsContentFile(name) {
		return name[:len(name)-len(filepath.Ext(name))]
	}
	return name
}

// SlugKey joins a slug for use as a map key. The home slug is "".
func SlugKey(slug []string) string {
	return strings.Join(slug, "/")
}

// ParseSlugKey is the inverse of SlugKey.
func ParseSlugKey(key string) []string {
	key = strings.Trim(key, "/")
	if key == "" {
		return []string{}
	}
	return strings.Split(key, "/")
}

// SlugCollision lists the files that derive the same slug.
type SlugCollision struct {
	Slug  []string `json:"slug"`
	Paths []string `json:"paths"`
}

func (c SlugCollision) Error() string {
	return fmt.Sprintf("%s: slug %q is claimed by %s", derrors.ErrSlugCollision, "/"+SlugKey(c.Slug), strings.Join(c.Paths, ", "))
}

func (c SlugCollision) Unwrap() error { return derrors.ErrSlugCollision }

// DetectCollisions reports every slug claimed by more than one document,
// ordered by slug key with paths sorted.
func DetectCollisions(docs []DocumentMetadata) []SlugCollision {
	byKey := make(map[string][]string)
	slugs := make(map[string][]string)
	for _, d := range docs {
		k := SlugKey(d.Slug)
		byKey[k] = append(byKey[k], d.Path)
		slugs[k] = d.Slug
	}

	var out []SlugCollision
	for k, paths := range byKey {
		if len(paths) < 2 {
			continue
		}
		sorted := slices.Clone(paths)
		slices.Sort(sorted)
		out = append(out, SlugCollision{Slug: slices.Clone(slugs[k]), Paths: sorted})
	}
	slices.SortFunc(out, func(a, b SlugCollision) int {
		return strings.Compare(SlugKey(a.Slug), SlugKey(b.Slug))
	})
	return out
}
