package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// Cache names used with IncCacheLookup.
const (
	CacheMetadata = "metadata"
	CacheDocument = "document"
	CacheSidebar  = "sidebar"
)

// Recorder defines observability hooks for the content pipeline.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncCacheLookup(cache string, hit bool)
	IncIncludeFailure(locale string)
	IncFallbackServed(locale string)
	AddPagesRendered(locale string, n int)
	ObserveHTTPRequest(route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)    {}
func (NoopRecorder) IncStageResult(string, ResultLabel)            {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)            {}
func (NoopRecorder) IncCacheLookup(string, bool)                   {}
func (NoopRecorder) IncIncludeFailure(string)                      {}
func (NoopRecorder) IncFallbackServed(string)                      {}
func (NoopRecorder) AddPagesRendered(string, int)                  {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration) {}

// Timer measures a stage and reports it on Stop.
type Timer struct {
	rec   Recorder
	stage string
	start time.Time
}

// StartStage starts timing a stage.
func StartStage(rec Recorder, stage string) *Timer {
	if rec == nil {
		rec = NoopRecorder{}
	}
	return &Timer{rec: rec, stage: stage, start: time.Now()}
}

// Stop records the duration and the result derived from err, returning the
// elapsed time.
func (t *Timer) Stop(err error) time.Duration {
	d := time.Since(t.start)
	t.rec.ObserveStageDuration(t.stage, d)
	result := ResultSuccess
	if err != nil {
		result = ResultFatal
	}
	t.rec.IncStageResult(t.stage, result)
	return d
}
