package errors

import "maps"

// ErrorCategory groups errors by the part of the pipeline that produced them.
type ErrorCategory string

const (
	// CategoryConfig covers packaging defects: missing content roots, a bad
	// locale table, unreadable configuration.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryDocs covers content errors: slugs, metadata, collisions.
	CategoryDocs       ErrorCategory = "docs"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRender     ErrorCategory = "render"
	CategorySearch     ErrorCategory = "search"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // aborts the command
	SeverityError   ErrorSeverity = "error"   // fails the current operation
	SeverityWarning ErrorSeverity = "warning" // output is degraded
)

// Context keys with a fixed meaning. Adapters surface them as the error's
// location.
const (
	KeyLocale = "locale"
	KeySlug   = "slug"
	KeyPath   = "path"
)

// ErrorContext holds structured details attached to an error.
type ErrorContext map[string]any

// Set adds or replaces a value, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get returns the value stored under key.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// String returns the value under key when it is a string.
func (c ErrorContext) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Merge returns a new context holding both sets of values; other wins on
// conflicting keys.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
