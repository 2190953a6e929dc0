package build

import "errors"

// Sentinel errors classifying build failures.
var (
	ErrCollisions = errors.New("docsite: slug collisions")
	ErrRender     = errors.New("docsite: render error")
	ErrWrite      = errors.New("docsite: write error")
)
