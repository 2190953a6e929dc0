// Package responses defines the JSON bodies of the docsite HTTP API.
package responses

import (
	"time"

	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Locales   int       `json:"locales"`
	// CachedDocuments is the number of documents held in the content cache.
	CachedDocuments int  `json:"cached_documents"`
	Search          bool `json:"search"`
}

// LocaleInfo describes one configured locale.
type LocaleInfo struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Tag     string `json:"tag"`
	Root    string `json:"root"`
	Default bool   `json:"default"`
}

// LocalesResponse is the body of GET /api/locales.
type LocalesResponse struct {
	Default string       `json:"default"`
	Locales []LocaleInfo `json:"locales"`
}

// PathInfo is one routable page of a locale.
type PathInfo struct {
	Slug     []string `json:"slug"`
	Href     string   `json:"href"`
	Fallback bool     `json:"fallback,omitempty"`
}

// PathsResponse is the body of GET /api/{locale}/paths.
type PathsResponse struct {
	Locale string     `json:"locale"`
	Paths  []PathInfo `json:"paths"`
}

// DocResponse is the body of GET /api/{locale}/docs/{slug...}.
type DocResponse struct {
	*site.Page
	HTML string `json:"html"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Locale string `json:"locale"`
	search.Results
}
