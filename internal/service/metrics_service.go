package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/repository"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	recordDuration  *prometheus.HistogramVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	sessionChecks   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	staleSnapshots  prometheus.Counter
	snapshotSeq     prometheus.Gauge
	exports         *prometheus.CounterVec
	exportsCleaned  prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	recordCount          uint64
	recordFailures       uint64
	recordDurationTotal  uint64
	staleCount           uint64
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

	recordDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "record_api_request_duration_seconds",
		Help:    "Duration of calls to the teacher record service",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	sessionChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_verifications_total",
		Help: "Session token verifications by policy and result",
	}, []string{"policy", "result"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Operator login attempts by result",
	}, []string{"result"})

	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_refreshes_total",
		Help: "Dashboard snapshot fetches by trigger and result",
	}, []string{"trigger", "result"})

	staleSnapshots := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_stale_snapshots_total",
		Help: "Fetched snapshots dropped because a newer one was already displayed",
	})

	snapshotSeq := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_snapshot_seq",
		Help: "Sequence id of the displayed dashboard snapshot",
	})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_generated_total",
		Help: "Export artifacts written by kind and format",
	}, []string{"kind", "format"})

	exportsCleaned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exports_cleaned_total",
		Help: "Expired export files removed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal, recordDuration,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		sessionChecks, logins, refreshes, staleSnapshots, snapshotSeq,
		exports, exportsCleaned, goroutines,
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		recordDuration:  recordDuration,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		sessionChecks:   sessionChecks,
		logins:          logins,
		refreshes:       refreshes,
		staleSnapshots:  staleSnapshots,
		snapshotSeq:     snapshotSeq,
		exports:         exports,
		exportsCleaned:  exportsCleaned,
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

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveRecordRequest times one record service call.
func (m *MetricsService) ObserveRecordRequest(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.recordDuration.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
	atomic.AddUint64(&m.recordCount, 1)
	atomic.AddUint64(&m.recordDurationTotal, uint64(elapsed.Nanoseconds()))
	if outcome != repository.OutcomeSuccess {
		atomic.AddUint64(&m.recordFailures, 1)
	}
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
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

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordSessionCheck counts one token verification.
func (m *MetricsService) RecordSessionCheck(policy string, ok bool) {
	if m == nil {
		return
	}
	m.sessionChecks.WithLabelValues(policy, result(ok)).Inc()
}

// RecordLogin counts one login attempt.
func (m *MetricsService) RecordLogin(ok bool) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result(ok)).Inc()
}

// RecordRefresh counts one dashboard fetch. Committed fetches move the seq gauge.
func (m *MetricsService) RecordRefresh(trigger string, ok bool, seq uint64, committed bool) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(trigger, result(ok)).Inc()
	if !ok {
		return
	}
	if committed {
		m.snapshotSeq.Set(float64(seq))
		return
	}
	m.staleSnapshots.Inc()
	atomic.AddUint64(&m.staleCount, 1)
}

// RecordExport counts one written artifact.
func (m *MetricsService) RecordExport(kind string, format models.ExportFormat) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind, string(format)).Inc()
}

// RecordExportCleanup counts removed export files.
func (m *MetricsService) RecordExportCleanup(removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.exportsCleaned.Add(float64(removed))
}

// Snapshot returns aggregated counters suitable for the metrics summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	records := atomic.LoadUint64(&m.recordCount)
	recordDuration := atomic.LoadUint64(&m.recordDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMs(reqDuration, requests),
		RecordCallsTotal:         records,
		RecordCallFailures:       atomic.LoadUint64(&m.recordFailures),
		AverageRecordCallMs:      averageMs(recordDuration, records),
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		StaleSnapshots:           atomic.LoadUint64(&m.staleCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func averageMs(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
