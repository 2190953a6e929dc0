package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// BuildService executes static builds.
type BuildService interface {
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains the inputs of one build.
type BuildRequest struct {
	// OutputDir receives the generated files.
	OutputDir string
	Options   BuildOptions
}

// BuildOptions modifies build behavior.
type BuildOptions struct {
	// Clean removes the output directory before writing.
	Clean bool
	// AllowCollisions keeps going when two files derive the same slug.
	AllowCollisions bool
	// SkipIfUnchanged skips rendering when the content hash matches the
	// previous manifest in OutputDir.
	SkipIfUnchanged bool
	// Search builds a search index at SearchIndexDir.
	Search         bool
	SearchIndexDir string
	// Concurrency bounds the locales built in parallel; 0 means all.
	Concurrency int
}

// BuildResult describes the outcome of a build.
type BuildResult struct {
	BuildID    string
	Status     BuildStatus
	OutputPath string
	Locales    int
	Pages      int
	// FallbackPages counts pages served from the default locale.
	FallbackPages   int
	IncludeWarnings int
	Collisions      []docs.SlugCollision
	ContentHash     string
	SearchDocuments int
	Duration        time.Duration
	StartTime       time.Time
	EndTime         time.Time
	Skipped         bool
	SkipReason      string
}

// BuildStatus is the outcome of a build.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusSkipped   BuildStatus = "skipped"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed ||
		s == BuildStatusSkipped || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed or had nothing to do.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusSkipped
}
