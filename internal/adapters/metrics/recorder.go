// Package metrics records build measurements with Prometheus collectors and
// writes them in the text exposition format for node_exporter's textfile collector.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "pack"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implements ports.Metrics on a private registry.
type Recorder struct {
	registry       *prom.Registry
	targetDuration *prom.HistogramVec
	targetResults  *prom.CounterVec
	artifacts      *prom.GaugeVec
	hookFailures   *prom.CounterVec
	runDuration    prom.Histogram
	runOutcomes    *prom.CounterVec
}

// NewRecorder creates the collectors and registers them. A nil registry gets a fresh one.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		registry: reg,
		targetDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "target_duration_seconds",
			Help:      "Duration of individual target builds",
			Buckets:   prom.DefBuckets,
		}, []string{"target"}),
		targetResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "target_results_total",
			Help:      "Target build results by status and failure kind",
		}, []string{"target", "status", "failure"}),
		artifacts: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "target_artifacts",
			Help:      "Number of artifacts written by the last build of a target",
		}, []string{"target"}),
		hookFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "hook_failures_total",
			Help:      "On-success hook failures",
		}, []string{"target"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a whole build run",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Build run outcomes",
		}, []string{"outcome"}),
	}

	reg.MustRegister(r.targetDuration, r.targetResults, r.artifacts, r.hookFailures, r.runDuration, r.runOutcomes)
	return r
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}

// ObserveResult records one target's outcome.
func (r *Recorder) ObserveResult(result domain.BuildResult) {
	r.targetDuration.WithLabelValues(result.Target).Observe(result.Duration.Seconds())
	r.targetResults.WithLabelValues(result.Target, string(result.Status), string(result.Failure)).Inc()
	if result.Succeeded() {
		r.artifacts.WithLabelValues(result.Target).Set(float64(len(result.Artifacts)))
	}
	if result.HookError != "" {
		r.hookFailures.WithLabelValues(result.Target).Inc()
	}
}

// ObserveRun records the wall time and outcome of a run.
func (r *Recorder) ObserveRun(duration time.Duration, failed bool) {
	r.runDuration.Observe(duration.Seconds())
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	r.runOutcomes.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, r.registry); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "path", path)
	}
	return nil
}
