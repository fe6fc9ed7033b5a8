// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records stage and worker outcomes for one process on a
// private Prometheus registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "research_report"

// Worker outcomes.
const (
	OutcomeResult  = "result"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

// Stage statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder holds the pipeline's Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	StageDuration  *prometheus.HistogramVec
	StageTotal     *prometheus.CounterVec
	WorkerOutcome  *prometheus.CounterVec
	WorkerDuration prometheus.Histogram
	ReportResults  prometheus.Gauge
}

// New creates a Recorder on a fresh registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"stage"},
		),

		StageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_total",
				Help:      "Pipeline stage executions by status",
			},
			[]string{"stage", "status"},
		),

		WorkerOutcome: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "worker_outcome_total",
				Help:      "Search worker completions by outcome",
			},
			[]string{"outcome"},
		),

		WorkerDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "worker_duration_seconds",
			Help:      "Duration of a single search worker in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),

		ReportResults: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "results",
			Help:      "Number of search results cited by the last report",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveStage records one stage execution.
func (r *Recorder) ObserveStage(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	r.StageTotal.WithLabelValues(stage, status).Inc()
}

// ObserveWorker records one worker completion.
func (r *Recorder) ObserveWorker(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.WorkerOutcome.WithLabelValues(outcome).Inc()
	r.WorkerDuration.Observe(d.Seconds())
}

// SetResults records how many results the report cites.
func (r *Recorder) SetResults(n int) {
	if r == nil {
		return
	}
	r.ReportResults.Set(float64(n))
}

// WriteTextfile writes every collected metric to path in the Prometheus
// text format, for pickup by a node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
