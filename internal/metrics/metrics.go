// Package metrics provides Prometheus metrics for the PowerSight server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	fileDecodesTotal    *prometheus.CounterVec
	fileBytesRead       prometheus.Counter
	csvFilesListed      prometheus.Histogram
}

// New creates a Metrics with Go runtime and process collectors included.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powersight_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "powersight_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		fileDecodesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powersight_file_decodes_total",
				Help: "File content reads by the encoding that decoded them (none on failure)",
			},
			[]string{"encoding"},
		),
		fileBytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "powersight_file_bytes_read_total",
				Help: "Total bytes read from files served by the content endpoint",
			},
		),
		csvFilesListed: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "powersight_csv_files_listed",
				Help:    "Number of CSV files returned per directory listing",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request metric.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDecode records a file read and which encoding decoded it.
// An empty encoding means no decoder accepted the content.
func (m *Metrics) RecordDecode(encoding string, bytes int) {
	if encoding == "" {
		encoding = "none"
	}
	m.fileDecodesTotal.WithLabelValues(encoding).Inc()
	m.fileBytesRead.Add(float64(bytes))
}

// RecordListing records the size of a directory listing.
func (m *Metrics) RecordListing(count int) {
	m.csvFilesListed.Observe(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request counts and latency labelled by the matched
// ServeMux pattern. It must wrap the mux directly so the pattern set on the
// request is visible after the call.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
