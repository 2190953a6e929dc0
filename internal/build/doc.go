// Package build writes the static form of a site: one JSON payload per
// page and locale, each locale's sidebar and path list, a build manifest
// and optionally a search index.
//
// The package also defines sentinel errors classifying build failures.
// They are wrapped with context at the call site.
package build
