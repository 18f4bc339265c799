// internal/monitoring/metrics.go
package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager manages Prometheus metrics for OGScrapexter
type MetricsManager struct {
	registry *prometheus.Registry

	// Request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec

	// Extraction metrics
	extractionsTotal prometheus.Counter
	extractionTime   prometheus.Histogram
	fieldsExtracted  prometheus.Histogram
	fallbacksApplied *prometheus.CounterVec

	// Cache metrics
	cacheLookups *prometheus.CounterVec

	// Bulk metrics
	bulkJobs     *prometheus.CounterVec
	bulkDuration prometheus.Histogram

	namespace string
	subsystem string
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Enabled         bool   `yaml:"enabled" json:"enabled"`
	Namespace       string `yaml:"namespace" json:"namespace"`
	Subsystem       string `yaml:"subsystem" json:"subsystem"`
	EnableGoMetrics bool   `yaml:"enable_go_metrics" json:"enable_go_metrics"`
	MetricsPath     string `yaml:"metrics_path" json:"metrics_path"`
	ListenAddress   string `yaml:"listen_address" json:"listen_address"`
}

// NewMetricsManager creates a new metrics manager with its own registry
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "ogscrapexter"
	}
	if config.Subsystem == "" {
		config.Subsystem = "extractor"
	}

	mm := &MetricsManager{
		registry:  prometheus.NewRegistry(),
		namespace: config.Namespace,
		subsystem: config.Subsystem,
	}
	if config.EnableGoMetrics {
		mm.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	mm.initializeMetrics()

	return mm
}

func (mm *MetricsManager) initializeMetrics() {
	factory := promauto.With(mm.registry)

	// Request metrics
	mm.requestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "requests_total",
			Help:      "Total number of page fetches",
		},
		[]string{"status_code", "host"},
	)

	mm.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "request_duration_seconds",
			Help:      "Page fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"host"},
	)

	mm.requestErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "request_errors_total",
			Help:      "Total number of failed page fetches",
		},
		[]string{"error_type", "host"},
	)

	// Extraction metrics
	mm.extractionsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "extractions_total",
			Help:      "Total number of documents processed",
		},
	)

	mm.extractionTime = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting metadata from a document",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	mm.fieldsExtracted = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "fields_extracted",
			Help:      "Number of fields present in each extracted record",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 80},
		},
	)

	mm.fallbacksApplied = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "fallbacks_applied_total",
			Help:      "Fields filled from non Open Graph sources",
		},
		[]string{"field"},
	)

	// Cache metrics
	mm.cacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"result"},
	)

	// Bulk metrics
	mm.bulkJobs = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "bulk_urls_total",
			Help:      "URLs processed by bulk runs",
		},
		[]string{"status"},
	)

	mm.bulkDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: mm.subsystem,
			Name:      "bulk_duration_seconds",
			Help:      "Duration of bulk runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)
}

// RecordRequest records a completed fetch
func (mm *MetricsManager) RecordRequest(host string, statusCode int, duration time.Duration) {
	mm.requestsTotal.WithLabelValues(strconv.Itoa(statusCode), host).Inc()
	mm.requestDuration.WithLabelValues(host).Observe(duration.Seconds())
}

func (mm *MetricsManager) RecordRequestError(errorType, host string) {
	mm.requestErrors.WithLabelValues(errorType, host).Inc()
}

func (mm *MetricsManager) RecordExtraction(duration time.Duration, fields int) {
	mm.extractionsTotal.Inc()
	mm.extractionTime.Observe(duration.Seconds())
	mm.fieldsExtracted.Observe(float64(fields))
}

func (mm *MetricsManager) RecordFallbacks(fields []string) {
	for _, field := range fields {
		mm.fallbacksApplied.WithLabelValues(field).Inc()
	}
}

func (mm *MetricsManager) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	mm.cacheLookups.WithLabelValues(result).Inc()
}

// RecordBulk records the outcome of a bulk run
func (mm *MetricsManager) RecordBulk(successful, failed int, duration time.Duration) {
	mm.bulkJobs.WithLabelValues("success").Add(float64(successful))
	mm.bulkJobs.WithLabelValues("failed").Add(float64(failed))
	mm.bulkDuration.Observe(duration.Seconds())
}

// Registry exposes the underlying registry for tests and custom collectors
func (mm *MetricsManager) Registry() *prometheus.Registry {
	return mm.registry
}

// MetricsHandler returns an HTTP handler for metrics endpoint
func (mm *MetricsManager) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{Registry: mm.registry})
}

// StartMetricsServer starts a standalone metrics HTTP server
func (mm *MetricsManager) StartMetricsServer(ctx context.Context, address, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, mm.MetricsHandler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
