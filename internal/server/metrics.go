package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the daemon's Prometheus collectors. Collectors register
// against the default registry, so a process creates at most one Metrics;
// a nil *Metrics disables recording.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	extractionsTotal *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	healthChecks     *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdbgate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdbgate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		extractionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdbgate_extractions_total",
				Help: "Total number of metadata extractions by container format",
			},
			[]string{"format", "status"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdbgate_cache_lookups_total",
				Help: "Total number of digest cache lookups",
			},
			[]string{"result"},
		),
		healthChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdbgate_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}
}

// RecordHTTPRequest records one finished HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordExtraction records one extraction attempt. Unrecognized inputs
// count under an empty format with status error.
func (m *Metrics) RecordExtraction(format string, success bool) {
	if m == nil {
		return
	}
	status := statusSuccess
	if !success {
		status = statusError
	}
	if format == "" {
		format = "unknown"
	}
	m.extractionsTotal.WithLabelValues(format, status).Inc()
}

// RecordCacheLookup records a digest cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordHealthCheck records a health probe.
func (m *Metrics) RecordHealthCheck(success bool) {
	if m == nil {
		return
	}
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.healthChecks.WithLabelValues(status).Inc()
}

// Instrument wraps a handler so request counts and latency are recorded
// under the given endpoint label. A nil Metrics returns the handler as is.
func (m *Metrics) Instrument(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)
		m.RecordHTTPRequest(r.Method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
