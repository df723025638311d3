package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	pagesWritten  prom.Counter
	assetsCopied  prom.Counter
	assetsSkipped *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "refbuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "refbuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "refbuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "refbuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesWritten = prom.NewCounter(prom.CounterOpts{
			Namespace: "refbuilder",
			Name:      "pages_written_total",
			Help:      "HTML and index pages written to the output tree",
		})
		pr.assetsCopied = prom.NewCounter(prom.CounterOpts{
			Namespace: "refbuilder",
			Name:      "manual_assets_copied_total",
			Help:      "Manual assets copied into the output tree",
		})
		pr.assetsSkipped = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "refbuilder",
			Name:      "manual_assets_skipped_total",
			Help:      "Manual asset references skipped, by reason",
		}, []string{"reason"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome, pr.pagesWritten, pr.assetsCopied, pr.assetsSkipped)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncPagesWritten(n int) {
	if p == nil || p.pagesWritten == nil {
		return
	}
	p.pagesWritten.Add(float64(n))
}

func (p *PrometheusRecorder) IncAssetCopied() {
	if p == nil || p.assetsCopied == nil {
		return
	}
	p.assetsCopied.Inc()
}

func (p *PrometheusRecorder) IncAssetSkipped(reason string) {
	if p == nil || p.assetsSkipped == nil {
		return
	}
	p.assetsSkipped.WithLabelValues(reason).Inc()
}
