package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the
// engine: HTTP traffic, job outcomes, catalogue round-trips and cache
// behaviour. All methods are nil-safe so wiring it stays optional.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	jobsTotal       *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	sessionsTotal   prometheus.Counter
	catalogueCalls  *prometheus.HistogramVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	queueDepth atomic.Value // func() int

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the engine's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	m := &MetricsService{registry: registry}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	m.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_jobs_total",
		Help: "Scheduling jobs by algorithm and terminal status",
	}, []string{"algorithm", "status"})

	m.jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduling_job_duration_seconds",
		Help:    "Wall time of scheduling jobs from start to terminal state",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"algorithm"})

	m.sessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_sessions_persisted_total",
		Help: "Scheduled sessions written to the catalogue service",
	})

	m.catalogueCalls = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalogue_request_duration_seconds",
		Help:    "Duration of catalogue service round-trips",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})
	m.cacheLatency = cacheLatency

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})
	m.cacheWrite = cacheWrite

	m.cacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	queueDepth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "scheduling_queue_depth",
		Help: "Jobs waiting in the scheduling queue",
	}, func() float64 {
		if fn, ok := m.queueDepth.Load().(func() int); ok && fn != nil {
			return float64(fn())
		}
		return 0
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.jobsTotal, m.jobDuration, m.sessionsTotal, m.catalogueCalls,
		cacheLatency, cacheWrite, m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		queueDepth, goroutines,
	)

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// SetQueueDepthProvider wires the queue depth gauge to the live queue.
func (m *MetricsService) SetQueueDepthProvider(fn func() int) {
	if m == nil || fn == nil {
		return
	}
	m.queueDepth.Store(fn)
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

// ObserveJob records a job reaching a terminal state.
func (m *MetricsService) ObserveJob(algorithm string, status models.SchedulingStatus, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(algorithm, string(status)).Inc()
	m.jobDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// AddSessionsPersisted counts sessions written to the catalogue.
func (m *MetricsService) AddSessionsPersisted(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.sessionsTotal.Add(float64(count))
}

// ObserveCatalogueCall records one catalogue round-trip.
func (m *MetricsService) ObserveCatalogueCall(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.catalogueCalls.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheOperation records cache hit/miss metrics and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of cache set operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}
