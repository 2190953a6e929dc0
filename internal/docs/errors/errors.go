// Package errors provides sentinel errors for content discovery and metadata
// extraction. Callers wrap them with %w so classification survives.
package errors

import "errors"

var (
	// ErrContentRootNotFound indicates a locale's content root is missing or not a directory.
	ErrContentRootNotFound = errors.New("content root not found")

	// ErrContentWalkFailed indicates filesystem traversal of a content root failed.
	ErrContentWalkFailed = errors.New("content directory walk failed")

	// ErrFileReadFailed indicates reading a content file failed.
	ErrFileReadFailed = errors.New("content file read failed")

	// ErrInvalidRelativePath indicates a file does not live under the given content root.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")

	// ErrSlugCollision indicates two files of one locale derive the same slug.
	ErrSlugCollision = errors.New("slug collision detected")
)
