// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded against filmcast_api_requests_total.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeMalformed = "malformed"
)

var (
	apiRequestsTotal           *prometheus.CounterVec
	apiRequestDurationSeconds  *prometheus.HistogramVec
	apiRetriesTotal            *prometheus.CounterVec
	filmsTotal                 prometheus.Counter
	actorsTotal                prometheus.Counter
	yearsTotal                 *prometheus.CounterVec
	skippedTotal               *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. It is safe to call multiple times, and every
// Observe helper calls it, so callers never see nil collectors.
func Init() {
	once.Do(func() {
		apiRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmcast_api_requests_total",
				Help: "Total number of API requests, labeled by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		)

		apiRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filmcast_api_request_duration_seconds",
				Help:    "Histogram of API request latencies, labeled by endpoint.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		)

		apiRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmcast_api_retries_total",
				Help: "Total number of retried API requests, labeled by endpoint.",
			},
			[]string{"endpoint"},
		)

		filmsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "filmcast_films_total",
				Help: "Total number of films harvested.",
			},
		)

		actorsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "filmcast_actors_total",
				Help: "Total number of actor credits extracted.",
			},
		)

		yearsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmcast_years_total",
				Help: "Total number of years processed, labeled by status.",
			},
			[]string{"status"},
		)

		skippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmcast_skipped_total",
				Help: "Total number of skipped items, labeled by kind (year or title).",
			},
			[]string{"kind"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests served, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAPIRequest records one API request attempt.
func ObserveAPIRequest(endpoint, outcome string, duration time.Duration) {
	Init()
	apiRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	apiRequestDurationSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveRetry records a retried API request.
func ObserveRetry(endpoint string) {
	Init()
	apiRetriesTotal.WithLabelValues(endpoint).Inc()
}

// ObserveFilm records one harvested film and its actor credits.
func ObserveFilm(actors int) {
	Init()
	filmsTotal.Inc()
	if actors > 0 {
		actorsTotal.Add(float64(actors))
	}
}

// ObserveYear records a finished year with status "done" or "skipped".
func ObserveYear(status string) {
	Init()
	yearsTotal.WithLabelValues(status).Inc()
}

// ObserveSkip records an item dropped by skip-and-continue.
func ObserveSkip(kind string) {
	Init()
	skippedTotal.WithLabelValues(kind).Inc()
}

// ObserveHTTPRequest records a request served by the metrics endpoint.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveMalformed records a response that was received but failed decoding.
func ObserveMalformed(endpoint string) {
	Init()
	apiRequestsTotal.WithLabelValues(endpoint, OutcomeMalformed).Inc()
}
