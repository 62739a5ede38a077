// Package metrics records deployment stage timings and outcomes.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default so nothing needs nil checks; PrometheusRecorder is installed by
// the serve and watch commands and exposed on /metrics.
package metrics
