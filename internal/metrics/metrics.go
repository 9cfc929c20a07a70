package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream kinds used as the "kind" label.
const (
	KindEmbedding  = "embedding"
	KindGeneration = "generation"
)

// Answer routes used as the "route" label.
const (
	RouteMatched  = "matched"
	RouteFallback = "fallback"
	RoutePrimary  = "primary"
)

// Upstream (OpenAI-compatible API) metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicbot",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream model requests",
		},
		[]string{"kind", "model", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clinicbot",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream model request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind", "model"},
	)

	UpstreamTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicbot",
			Name:      "upstream_tokens_total",
			Help:      "Total upstream tokens consumed",
		},
		[]string{"kind", "model", "type"},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicbot",
			Name:      "upstream_errors_total",
			Help:      "Total upstream model errors",
		},
		[]string{"kind", "model", "error_type"},
	)

	BreakerOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clinicbot",
			Name:      "upstream_breaker_open",
			Help:      "1 while the upstream circuit breaker is open",
		},
		[]string{"name"},
	)
)

// Question matching metrics.
var (
	MatchScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clinicbot",
			Name:      "match_best_score",
			Help:      "Best cosine similarity per matched question",
			Buckets:   []float64{0, 0.2, 0.4, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1},
		},
		[]string{"language"},
	)

	MatchSkippedEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicbot",
			Name:      "match_skipped_entries_total",
			Help:      "Reference entries skipped during a scan",
		},
		[]string{"language", "reason"},
	)

	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicbot",
			Name:      "answers_total",
			Help:      "Answered questions by route",
		},
		[]string{"language", "route"},
	)
)

// Reference data metrics.
var (
	CorpusLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinicbot",
			Name:      "corpus_loads_total",
			Help:      "Corpus reads from the backing source",
		},
		[]string{"language", "source", "status"},
	)

	CorpusEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "clinicbot",
			Name:      "corpus_entries",
			Help:      "Number of reference entries in the last loaded corpus",
		},
		[]string{"language"},
	)
)

var registered bool

// Register registers the domain metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		UpstreamTokensTotal,
		UpstreamErrorsTotal,
		BreakerOpen,
		MatchScore,
		MatchSkippedEntriesTotal,
		AnswersTotal,
		CorpusLoadsTotal,
		CorpusEntries,
	)
	registered = true
}
