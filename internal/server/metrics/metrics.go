// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the object-storage collaborator.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	storageOpsTotal     *prometheus.CounterVec
	storageOpErrors     *prometheus.CounterVec
	uploadBytesTotal    prometheus.Counter
	downloadBytesTotal  prometheus.Counter
}

// New creates a metrics instance registered on the default registry.
func New() *Metrics {
	return newWithRegistry(prometheus.DefaultRegisterer)
}

// newWithRegistry creates a metrics instance with a custom registry (for testing).
func newWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		storageOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_operations_total",
				Help: "Total number of object-storage operations",
			},
			[]string{"operation"},
		),
		storageOpErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_operation_errors_total",
				Help: "Total number of failed object-storage operations",
			},
			[]string{"operation"},
		),
		uploadBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "upload_bytes_total",
				Help: "Total payload bytes accepted for upload",
			},
		),
		downloadBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "download_bytes_total",
				Help: "Total payload bytes served for download",
			},
		),
	}
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveStorageOp records one object-storage call.
func (m *Metrics) ObserveStorageOp(operation string, err error) {
	m.storageOpsTotal.WithLabelValues(operation).Inc()
	if err != nil {
		m.storageOpErrors.WithLabelValues(operation).Inc()
	}
}

// AddUploadBytes accounts payload bytes accepted for upload.
func (m *Metrics) AddUploadBytes(n int) {
	m.uploadBytesTotal.Add(float64(n))
}

// AddDownloadBytes accounts payload bytes served for download.
func (m *Metrics) AddDownloadBytes(n int) {
	m.downloadBytesTotal.Add(float64(n))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
