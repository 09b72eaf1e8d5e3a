package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_leads_captured_total",
			Help: "Leads received by the capture forms, split by origin and whether a new lead was created",
		},
		[]string{"origin", "created"},
	)

	waitlistJoins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_waitlist_joins_total",
			Help: "Waitlist join attempts by result code",
		},
		[]string{"result"},
	)

	enrollmentSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_enrollment_steps_total",
			Help: "Enrollment steps completed",
		},
		[]string{"step"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão do chi (/leads/{leadId}/submissions) para não explodir a
// cardinalidade com ids.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func RecordLeadCaptured(origin string, created bool) {
	leadsCaptured.WithLabelValues(origin, strconv.FormatBool(created)).Inc()
}

func RecordWaitlistJoin(result string) {
	if result == "" {
		result = "JOINED"
	}
	waitlistJoins.WithLabelValues(result).Inc()
}

func RecordEnrollmentStep(step string) {
	enrollmentSteps.WithLabelValues(step).Inc()
}
