package providers

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sessionstate/internal/services"
	"sessionstate/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(op string, duration time.Duration)
	IncStateLoads(outcome string)
	IncMigrations(fromVersion uint)
	IncSaveErrors()
	SetBlobBytes(n int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration *prometheus.HistogramVec
	stateLoads          *prometheus.CounterVec
	migrations          *prometheus.CounterVec
	saveErrors          prometheus.Counter
	blobBytes           prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(op string, duration time.Duration) {
	m.persistenceDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncStateLoads(outcome string) {
	m.stateLoads.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncMigrations(fromVersion uint) {
	m.migrations.WithLabelValues(strconv.FormatUint(uint64(fromVersion), 10)).Inc()
}

func (m *MetricsProvider) IncSaveErrors() {
	m.saveErrors.Inc()
}

func (m *MetricsProvider) SetBlobBytes(n int) {
	m.blobBytes.Set(float64(n))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service services.SessionServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiond_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sessiond_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sessiond_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sessiond_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sessiond_persistence_duration_seconds",
			Help:    "Duration of state load and save operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		stateLoads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiond_state_loads_total",
			Help: "Saved state loads by outcome",
		}, []string{"outcome"}),

		migrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiond_state_migrations_total",
			Help: "Saved state upgrades by source schema version",
		}, []string{"from"}),

		saveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sessiond_state_save_errors_total",
			Help: "Total number of failed state saves",
		}),

		blobBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sessiond_state_blob_bytes",
			Help: "Size of the last blob read or written, before compression",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sessiond_state_revision",
		Help: "Current in-memory state revision",
	}, func() float64 {
		return float64(service.Revision())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sessiond_state_dirty",
		Help: "1 when the in-memory state has unsaved changes",
	}, func() float64 {
		if service.IsDirty() {
			return 1
		}
		return 0
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sessiond_profiles_total",
		Help: "Number of profiles in the current state",
	}, func() float64 {
		return float64(service.ProfileCount())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                     {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)     {}
func (n *noopMetrics) IncCacheHits()                                        {}
func (n *noopMetrics) IncCacheMisses()                                      {}
func (n *noopMetrics) ObservePersistenceDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncStateLoads(_ string)                               {}
func (n *noopMetrics) IncMigrations(_ uint)                                 {}
func (n *noopMetrics) IncSaveErrors()                                       {}
func (n *noopMetrics) SetBlobBytes(_ int)                                   {}
