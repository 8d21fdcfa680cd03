// Package observability holds the Prometheus metrics for the agent pipelines
// and the HTTP surface.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlanAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_generation_attempts_total",
		Help: "Number of itinerary generation attempts, including retries.",
	})

	PlanOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_outcomes_total",
		Help: "Terminal planning pipeline outcomes.",
	}, []string{"outcome"})

	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_validation_failures_total",
		Help: "Drafts discarded by the validation rules.",
	})

	ReviewOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewer_outcomes_total",
		Help: "Review pipeline outcomes by action.",
	}, []string{"action"})

	VenueSearchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "venue_search_errors_total",
		Help: "Swallowed venue provider failures by provider.",
	}, []string{"provider"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by path and status code.",
	}, []string{"path", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the wrapped writer so streaming responses keep working.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// NewMetricsMiddleware records request counts and latency per path.
func NewMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		httpRequests.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
