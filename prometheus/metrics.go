package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"movie-service/pkg/config"
)

// Metrics holds the service collectors. Each instance owns its registry so
// several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	StatusCategoryTotal *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec
	RateLimitedCounter  prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Movie metrics
	MovieOperationsCounter *prometheus.CounterVec

	// Genre metrics
	GenresGauge prometheus.Gauge
}

// NewMetrics registers the service collectors on a fresh registry
func NewMetrics(cfg *config.Config) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	prefix := cfg.Metrics.Prefix

	return &Metrics{
		registry: reg,

		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		StatusCategoryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category", "method", "path"},
		),

		AuthAttemptsCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		}),
		AuthSuccessCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		}),
		AuthErrorsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
			[]string{"reason"},
		),
		RateLimitedCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),

		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),

		MovieOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_movie_operations_total",
				Help: "Total number of movie operations",
			},
			[]string{"operation"},
		),

		GenresGauge: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_genres",
			Help: "Number of genres available",
		}),
	}
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		m.DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordMovieOperation increments the counter for movie operations
func (m *Metrics) RecordMovieOperation(operation string) {
	m.MovieOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordAuthAttempt increments the authentication attempt counter
func (m *Metrics) RecordAuthAttempt() {
	m.AuthAttemptsCounter.Inc()
}

// RecordAuthSuccess increments the successful authentication counter
func (m *Metrics) RecordAuthSuccess() {
	m.AuthSuccessCounter.Inc()
}

// RecordAuthError increments the authentication error counter for reason
func (m *Metrics) RecordAuthError(reason string) {
	m.AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordRateLimited increments the rate limited request counter
func (m *Metrics) RecordRateLimited() {
	m.RateLimitedCounter.Inc()
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(elapsed.Seconds())

	if category := statusCategory(status); category != "" {
		m.StatusCategoryTotal.WithLabelValues(category, method, path).Inc()
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return ""
	}
}

// SetGenres updates the genre gauge
func (m *Metrics) SetGenres(count int) {
	m.GenresGauge.Set(float64(count))
}
