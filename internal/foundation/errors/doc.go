// Package errors provides classified errors for docsite.
//
// A ClassifiedError carries a category, a severity and structured context.
// The locale, slug and path keys form the error's Location, which the CLI and
// HTTP adapters show next to the message:
//
//	err := errors.ConfigError("content root not found").
//		WithLocale("zh").
//		WithPath(root).
//		WithCause(statErr).
//		Build()
//
// The adapters map categories to exit codes and HTTP statuses so callers never
// switch on error strings.
package errors
