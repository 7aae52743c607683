package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Operations        *prometheus.CounterVec
	DegradedSteps     *prometheus.CounterVec
	UpstreamErrors    *prometheus.CounterVec
	SummarizeTriggers prometheus.Counter
	BuildLatency      prometheus.Histogram

	stages *stageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_operations_total",
			Help:      "Memory operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		DegradedSteps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_degraded_steps_total",
			Help:      "Non-fatal sub-steps skipped after upstream failure, by step.",
		}, []string{"step"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Upstream call failures by provider and kind.",
		}, []string{"provider", "kind"}),
		SummarizeTriggers: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarize_triggers_total",
			Help:      "Summarization runs fired by the turn counter.",
		}),
		BuildLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "context_build_latency_ms",
			Help:      "Latency of BuildContext in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
		stages: newStageWindow(256),
	}
}

// ObserveStage records one stage duration in the sliding latency window.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.Observe(stage, float64(d.Nanoseconds())/1e6)
}

// ObserveIndicator bumps a named counter in the sliding window snapshot.
func (m *Metrics) ObserveIndicator(name string) {
	if m == nil {
		return
	}
	m.stages.ObserveIndicator(name)
}

// SnapshotStages returns the current sliding-window latency snapshot.
func (m *Metrics) SnapshotStages() StageSnapshot {
	if m == nil {
		return StageSnapshot{}
	}
	return m.stages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
