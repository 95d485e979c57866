package metrics

import "github.com/prometheus/client_golang/prometheus"

// Question-answering Prometheus metrics.
var (
	QuestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askledger",
			Name:      "questions_total",
			Help:      "Total number of questions answered",
		},
		[]string{"parser", "action", "status"},
	)

	QuestionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askledger",
			Name:      "question_duration_seconds",
			Help:      "End-to-end question handling duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"parser"},
	)

	ClassifyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askledger",
			Name:      "classify_requests_total",
			Help:      "Total number of classifier API requests",
		},
		[]string{"model", "status"},
	)

	ClassifyRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "askledger",
			Name:      "classify_request_duration_seconds",
			Help:      "Classifier API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	AnswerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askledger",
			Name:      "answer_cache_total",
			Help:      "Answer cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers the question metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QuestionsTotal)
	prometheus.MustRegister(QuestionDuration)
	prometheus.MustRegister(ClassifyRequestsTotal)
	prometheus.MustRegister(ClassifyRequestDuration)
	prometheus.MustRegister(AnswerCacheTotal)
	queryMetricsRegistered = true
}
