package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "holidaze"

var (
	once sync.Once

	bookingSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_submissions_total",
			Help:      "Count of booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Count of Holidaze API requests by method, endpoint and status.",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Holidaze API request latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of API cache lookups by result.",
		},
		[]string{"result"},
	)

	activeForms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_forms",
			Help:      "Number of booking form sessions held by the server.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Count of booking notifications by status.",
		},
		[]string{"status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingSubmissions, apiRequests, apiDuration, cacheLookups, activeForms, notifications)
	})
}

func IncSubmission(outcome string) {
	bookingSubmissions.WithLabelValues(outcome).Inc()
}

// ObserveAPIRequest records one API call. status 0 means a transport error.
func ObserveAPIRequest(method, endpoint string, status int, seconds float64) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(method, endpoint, code).Inc()
	apiDuration.WithLabelValues(endpoint).Observe(seconds)
}

func IncCache(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func SetActiveForms(n int) {
	activeForms.Set(float64(n))
}

func IncNotification(status string) {
	notifications.WithLabelValues(status).Inc()
}
