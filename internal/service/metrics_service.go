package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/evtcal-api/internal/models"
)

// Download outcomes recorded by ObserveDownload.
const (
	DownloadServed   = "served"
	DownloadRejected = "rejected"
	DownloadReplayed = "replayed"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	renders         *prometheus.CounterVec
	normalizeErrors *prometheus.CounterVec
	downloads       *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	renderCount          uint64
	rejectedCount        uint64
	downloadCount        uint64
}

// NewMetricsService registers core Prometheus collectors.
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

	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_renders_total",
		Help: "Calendar outputs rendered per provider",
	}, []string{"provider"})

	normalizeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_normalization_failures_total",
		Help: "Events rejected during normalization by error code",
	}, []string{"code"})

	downloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calendar_downloads_total",
		Help: "Calendar file download attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, renders, normalizeErrors, downloads, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		renders:         renders,
		normalizeErrors: normalizeErrors,
		downloads:       downloads,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveRender counts one rendered output for provider.
func (m *MetricsService) ObserveRender(provider string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(provider).Inc()
	atomic.AddUint64(&m.renderCount, 1)
}

// ObserveNormalizationFailure counts a rejected event by error code.
func (m *MetricsService) ObserveNormalizationFailure(code string) {
	if m == nil {
		return
	}
	m.normalizeErrors.WithLabelValues(code).Inc()
	atomic.AddUint64(&m.rejectedCount, 1)
}

// ObserveDownload counts a download attempt by outcome.
func (m *MetricsService) ObserveDownload(outcome string) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(outcome).Inc()
	if outcome == DownloadServed {
		atomic.AddUint64(&m.downloadCount, 1)
	}
}

// Snapshot returns aggregated metrics suitable for a JSON summary.
func (m *MetricsService) Snapshot() models.ServiceMetrics {
	if m == nil {
		return models.ServiceMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.ServiceMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		RendersTotal:             atomic.LoadUint64(&m.renderCount),
		RejectedEventsTotal:      atomic.LoadUint64(&m.rejectedCount),
		DownloadsServed:          atomic.LoadUint64(&m.downloadCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
