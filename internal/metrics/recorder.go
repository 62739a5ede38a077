package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultSkipped  ResultLabel = "skipped"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for a deployment run.
type Recorder interface {
	ObserveStageDuration(target, stage string, d time.Duration)
	IncStageResult(target, stage string, result ResultLabel)
	ObserveDeployDuration(target string, d time.Duration)
	IncDeployOutcome(target, kind string)
	AddSyncCounts(target string, counts map[string]int)
	IncPushRetry(target string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, string, ResultLabel)         {}
func (NoopRecorder) ObserveDeployDuration(string, time.Duration)        {}
func (NoopRecorder) IncDeployOutcome(string, string)                    {}
func (NoopRecorder) AddSyncCounts(string, map[string]int)               {}
func (NoopRecorder) IncPushRetry(string)                                {}
