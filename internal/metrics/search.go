package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentdex",
			Name:      "inference_requests_total",
			Help:      "Total number of LLM inference requests",
		},
		[]string{"purpose", "model", "status"},
	)

	InferenceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "talentdex",
			Name:      "inference_request_duration_seconds",
			Help:      "LLM inference request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"purpose", "model"},
	)

	SearchExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentdex",
			Name:      "search_executions_total",
			Help:      "Datastore predicate executions by fallback tier and outcome",
		},
		[]string{"tier", "status"}, // status: ok / error / timeout / empty
	)

	JobPollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "talentdex",
			Name:      "job_poll_duration_seconds",
			Help:      "Wall-clock time from job submission to terminal state",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 90, 120},
		},
	)

	PageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "talentdex",
			Name:      "page_cache_total",
			Help:      "Result page resolutions by source",
		},
		[]string{"result"}, // "hit" / "slice" / "search"
	)

	RerankDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "talentdex",
			Name:      "rerank_degraded_total",
			Help:      "Candidates degraded to score 0 due to failed or malformed scoring",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(InferenceRequestsTotal)
	prometheus.MustRegister(InferenceRequestDuration)
	prometheus.MustRegister(SearchExecutionsTotal)
	prometheus.MustRegister(JobPollDuration)
	prometheus.MustRegister(PageCacheTotal)
	prometheus.MustRegister(RerankDegradedTotal)
	searchMetricsRegistered = true
}
