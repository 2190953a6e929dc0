// Package manifest records what a static build produced: the build ID, the
// source commit, per-locale page counts and the fingerprint of every page.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// BuildManifest is the record of one static build.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	// Commit is the HEAD of the content repository, when it is one.
	Commit   string         `json:"commit,omitempty"`
	Status   string         `json:"status"`
	Duration int64          `json:"duration_ms"`
	Locales  []LocaleOutput `json:"locales"`
	// Pages maps "<locale>:<slug key>" to the page's content fingerprint.
	Pages       map[string]string `json:"pages"`
	ContentHash string            `json:"content_hash"`
	Search      bool              `json:"search,omitempty"`
}

// LocaleOutput counts the pages written for one locale.
type LocaleOutput struct {
	ID            string `json:"id"`
	Pages         int    `json:"pages"`
	FallbackPages int    `json:"fallback_pages"`
}

// PageKey is the Pages key of slug in a locale.
func PageKey(localeID string, slug []string) string {
	return localeID + ":" + docs.SlugKey(slug)
}

// Hash returns the content hash over the page fingerprints.
func (m *BuildManifest) Hash() string {
	return docs.SetHash(m.Pages)
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Read loads the manifest of the build in dir. A missing manifest returns
// nil without error.
func Read(dir string) (*BuildManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}

// Write stores the manifest in dir.
func (m *BuildManifest) Write(dir string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}
