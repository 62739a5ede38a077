package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blogsync"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	stageDuration  *prom.HistogramVec
	stageResults   *prom.CounterVec
	deployDuration *prom.HistogramVec
	deployOutcomes *prom.CounterVec
	syncItems      *prom.CounterVec
	pushRetries    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the deployment metrics on
// reg. A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual deployment stages",
			Buckets:   prom.DefBuckets,
		}, []string{"target", "stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"target", "stage", "result"}),
		deployDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "deploy_duration_seconds",
			Help:      "Total deployment duration",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"target"}),
		deployOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "deploy_outcomes_total",
			Help:      "Deployment outcomes by result kind",
		}, []string{"target", "kind"}),
		syncItems: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sync_items_total",
			Help:      "Files touched by content and image sync",
		}, []string{"target", "item"}),
		pushRetries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "push_retries_total",
			Help:      "Retried pushes after transient git failures",
		}, []string{"target"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.deployDuration, pr.deployOutcomes, pr.syncItems, pr.pushRetries)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveStageDuration(target, stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(target, stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(target, stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(target, stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveDeployDuration(target string, d time.Duration) {
	if p == nil {
		return
	}
	p.deployDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDeployOutcome(target, kind string) {
	if p == nil {
		return
	}
	p.deployOutcomes.WithLabelValues(target, kind).Inc()
}

func (p *PrometheusRecorder) AddSyncCounts(target string, counts map[string]int) {
	if p == nil {
		return
	}
	for item, n := range counts {
		if n > 0 {
			p.syncItems.WithLabelValues(target, item).Add(float64(n))
		}
	}
}

func (p *PrometheusRecorder) IncPushRetry(target string) {
	if p == nil {
		return
	}
	p.pushRetries.WithLabelValues(target).Inc()
}
