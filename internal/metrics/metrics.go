package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paper2deck",
			Name:      "generations_total",
			Help:      "Generation runs by outcome",
		},
		[]string{"outcome"},
	)

	StageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paper2deck",
			Name:      "stage_failures_total",
			Help:      "Failed generation runs by stage and error kind",
		},
		[]string{"stage", "kind"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paper2deck",
			Name:      "stage_duration_seconds",
			Help:      "Duration of a pipeline stage in seconds",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 30, 60, 120},
		},
		[]string{"stage"},
	)

	AICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paper2deck",
			Name:      "ai_calls_total",
			Help:      "Completion calls to the language model provider",
		},
		[]string{"provider", "outcome"},
	)

	ArtifactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paper2deck",
			Name:      "artifacts_total",
			Help:      "Artifact store operations",
		},
		[]string{"operation", "status"},
	)
)

func RecordGeneration(outcome string) {
	GenerationsTotal.WithLabelValues(outcome).Inc()
}

func RecordStageFailure(stage, kind string) {
	StageFailuresTotal.WithLabelValues(stage, kind).Inc()
}

func RecordStage(stage string, durationSec float64) {
	StageDuration.WithLabelValues(stage).Observe(durationSec)
}

func RecordAICall(provider, outcome string) {
	AICallsTotal.WithLabelValues(provider, outcome).Inc()
}

func RecordArtifact(operation, status string) {
	ArtifactsTotal.WithLabelValues(operation, status).Inc()
}
