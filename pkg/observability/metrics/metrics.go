package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of one submission cycle.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalid         = "invalid"
	OutcomeNumericParse    = "numeric_parse_error"
	OutcomeUnknownCategory = "unknown_category"
	OutcomeInference       = "inference_error"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obesity_check_submissions_total",
		Help: "Questionnaire submissions by outcome.",
	}, []string{"outcome"})

	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "obesity_check_prediction_duration_seconds",
		Help:    "Time spent translating and predicting a validated submission.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	})

	predictedLabels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obesity_check_predicted_label_total",
		Help: "Predicted obesity categories.",
	}, []string{"label"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obesity_check_prediction_cache_lookups_total",
		Help: "Prediction cache lookups by result.",
	}, []string{"result"})
)

func ObserveOutcome(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

func ObservePrediction(label string, took time.Duration) {
	predictedLabels.WithLabelValues(label).Inc()
	predictionDuration.Observe(took.Seconds())
}

func ObserveCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
