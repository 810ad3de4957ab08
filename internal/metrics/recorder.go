package metrics

import "time"

// Recorder defines observability hooks for build and serve metrics.
// Implementations may forward to Prometheus or anything else. All methods must
// be safe on the NoopRecorder so recorders stay optional injection points.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|failed
	IncRebuild(trigger string)      // trigger: fsevent|scheduled|initial
	SetLiveReloadClients(n int)
	SetLastBuildFiles(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)             {}
func (NoopRecorder) IncRebuild(string)                  {}
func (NoopRecorder) SetLiveReloadClients(int)           {}
func (NoopRecorder) SetLastBuildFiles(int)              {}
