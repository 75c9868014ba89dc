package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the diary API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	columnsAdded    prometheus.Counter
	syncFailures    prometheus.Counter
	bundlesBuilt    *prometheus.CounterVec
	bundleBytes     prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	columnsAdded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schema_columns_added_total",
		Help: "Lesson columns added by the schema synchronizer",
	})

	syncFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schema_sync_store_failures_total",
		Help: "Per-store failures during schema synchronization",
	})

	bundlesBuilt := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bundles_built_total",
		Help: "Login bundles built, by role",
	}, []string{"role"})

	bundleBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bundle_bytes_total",
		Help: "Total bytes of bundle archives served",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, columnsAdded, syncFailures, bundlesBuilt, bundleBytes, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		columnsAdded:    columnsAdded,
		syncFailures:    syncFailures,
		bundlesBuilt:    bundlesBuilt,
		bundleBytes:     bundleBytes,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSchemaSync records synchronizer outcomes.
func (m *MetricsService) ObserveSchemaSync(columnsAdded, storeFailures int) {
	if m == nil {
		return
	}
	m.columnsAdded.Add(float64(columnsAdded))
	m.syncFailures.Add(float64(storeFailures))
}

// ObserveBundle records a served login bundle.
func (m *MetricsService) ObserveBundle(role string, size int) {
	if m == nil {
		return
	}
	m.bundlesBuilt.WithLabelValues(role).Inc()
	m.bundleBytes.Add(float64(size))
}
