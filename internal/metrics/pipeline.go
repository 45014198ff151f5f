package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation and indexing pipeline metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braintrust",
			Name:      "generation_requests_total",
			Help:      "Total number of LLM generation requests",
		},
		[]string{"model", "operation", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "braintrust",
			Name:      "generation_request_duration_seconds",
			Help:      "LLM generation request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model", "operation"},
	)

	IndexedThreadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braintrust",
			Name:      "indexed_threads_total",
			Help:      "Total thread indexing attempts by outcome",
		},
		[]string{"status"},
	)

	IndexingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "braintrust",
			Name:      "indexing_duration_seconds",
			Help:      "Duration of a single thread indexing procedure",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	QueueMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braintrust",
			Name:      "queue_messages_total",
			Help:      "Change-event queue messages by disposition",
		},
		[]string{"disposition"}, // "processed" / "failed" / "discarded"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers generation and indexing metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(IndexedThreadsTotal)
	prometheus.MustRegister(IndexingDuration)
	prometheus.MustRegister(QueueMessagesTotal)
	pipelineMetricsRegistered = true
}
