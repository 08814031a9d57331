// Package metrics provides Prometheus metrics for the feedback service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feedback"

// Submission outcomes.
const (
	OutcomeCreated       = "created"
	OutcomeInvalidBody   = "invalid_body"
	OutcomeMissingFields = "missing_fields"
	OutcomeValidation    = "validation_error"
	OutcomeStoreError    = "store_error"
)

// Notification results.
const (
	ResultSent     = "sent"
	ResultFailed   = "failed"
	ResultDisabled = "disabled"
)

// Metrics holds the service collectors.
type Metrics struct {
	submissions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	auto := promauto.With(reg)
	return &Metrics{
		submissions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Feedback submissions by outcome",
		}, []string{"outcome"}),
		notifications: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification emails by kind and result",
		}, []string{"kind", "result"}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status_code"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status_code"}),
	}
}

func (m *Metrics) ObserveSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveNotification(kind, result string) {
	m.notifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
