package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("write_overview", time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("write_overview", ResultSuccess)
	r.IncBuildOutcome("success")
	r.IncPagesWritten(3)
	r.IncAssetCopied()
	r.IncAssetSkipped("traversal")
}

func TestPrometheusRecorderRegisters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("build_catalog", 5*time.Millisecond)
	pr.ObserveBuildDuration(50 * time.Millisecond)
	pr.IncStageResult("build_catalog", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncPagesWritten(28)
	pr.IncAssetCopied()
	pr.IncAssetSkipped("external")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"refbuilder_stage_duration_seconds",
		"refbuilder_build_duration_seconds",
		"refbuilder_stage_results_total",
		"refbuilder_build_outcomes_total",
		"refbuilder_pages_written_total",
		"refbuilder_manual_assets_copied_total",
		"refbuilder_manual_assets_skipped_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered (got %v)", want, names)
		}
	}
}

func TestPrometheusRecorderNilReceiverSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("x", time.Millisecond)
	pr.IncPagesWritten(1)
	pr.IncAssetCopied()
	pr.IncAssetSkipped("missing")
}
