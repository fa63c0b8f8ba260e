package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildInfo reports the running build as constant labels.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pulse_api_build_info",
		Help: "Build information for the pulse API",
	}, []string{"version", "commit", "date"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_api_http_requests_total",
		Help: "Total HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_api_http_request_duration_seconds",
		Help:    "HTTP request duration by route and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	postgresQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_api_postgres_queries_total",
		Help: "Total Postgres queries by result status",
	}, []string{"status"})

	postgresQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_api_postgres_query_duration_seconds",
		Help:    "Postgres query duration",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordPostgresQuery records the duration and outcome of a Postgres query.
func RecordPostgresQuery(duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	postgresQueriesTotal.WithLabelValues(status).Inc()
	postgresQueryDuration.Observe(duration.Seconds())
}

// Middleware records request counts and latencies labeled by the Chi
// route pattern, falling back to the raw path when no pattern matched.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
