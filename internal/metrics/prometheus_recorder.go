package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	buildDuration     prom.Histogram
	buildOutcome      *prom.CounterVec
	rebuilds          *prom.CounterVec
	livereloadClients prom.Gauge
	lastBuildFiles    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuild",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuild",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.rebuilds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuild",
			Name:      "serve_rebuilds_total",
			Help:      "Dev server rebuilds by trigger",
		}, []string{"trigger"})
		pr.livereloadClients = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuild",
			Name:      "livereload_clients",
			Help:      "Currently connected live reload clients",
		})
		pr.lastBuildFiles = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuild",
			Name:      "last_build_files",
			Help:      "Files emitted by the most recent completed build",
		})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.rebuilds, pr.livereloadClients, pr.lastBuildFiles)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncRebuild(trigger string) {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.WithLabelValues(trigger).Inc()
}

func (p *PrometheusRecorder) SetLiveReloadClients(n int) {
	if p == nil || p.livereloadClients == nil {
		return
	}
	p.livereloadClients.Set(float64(n))
}

func (p *PrometheusRecorder) SetLastBuildFiles(n int) {
	if p == nil || p.lastBuildFiles == nil {
		return
	}
	p.lastBuildFiles.Set(float64(n))
}
