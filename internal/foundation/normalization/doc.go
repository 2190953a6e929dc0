// Package normalization folds loosely written configuration values (case,
// whitespace, aliases) into canonical enum values.
package normalization
