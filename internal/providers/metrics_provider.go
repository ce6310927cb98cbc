package providers

import (
	"rucd/internal/services"
	"rucd/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncRemindersScheduled(category string)
	IncRemindersCancelled(category string, count int)
	IncRemindersFired(category string)
	IncRemindersSuppressed(category string)
	SetAttentionCount(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	remindersScheduled  *prometheus.CounterVec
	remindersCancelled  *prometheus.CounterVec
	remindersFired      *prometheus.CounterVec
	remindersSuppressed *prometheus.CounterVec
	attentionCount      prometheus.Gauge
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

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRemindersScheduled(category string) {
	m.remindersScheduled.WithLabelValues(category).Inc()
}

func (m *MetricsProvider) IncRemindersCancelled(category string, count int) {
	m.remindersCancelled.WithLabelValues(category).Add(float64(count))
}

func (m *MetricsProvider) IncRemindersFired(category string) {
	m.remindersFired.WithLabelValues(category).Inc()
}

func (m *MetricsProvider) IncRemindersSuppressed(category string) {
	m.remindersSuppressed.WithLabelValues(category).Inc()
}

func (m *MetricsProvider) SetAttentionCount(count int) {
	m.attentionCount.Set(float64(count))
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

func NewMetricsProvider(conf *structures.Config, service services.FleetServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rucd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rucd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rucd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rucd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rucd_persistence_duration_seconds",
			Help:    "Duration of fleet snapshot persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		remindersScheduled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rucd_reminders_scheduled_total",
			Help: "Total number of reminders handed to the notifier",
		}, []string{"category"}),

		remindersCancelled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rucd_reminders_cancelled_total",
			Help: "Total number of scheduled reminders cancelled during re-runs",
		}, []string{"category"}),

		remindersFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rucd_reminders_fired_total",
			Help: "Total number of reminders delivered",
		}, []string{"category"}),

		remindersSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rucd_reminders_suppressed_total",
			Help: "Total number of past-due reminders suppressed by dedup state",
		}, []string{"category"}),

		attentionCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rucd_attention_count",
			Help: "Number of vehicles currently needing attention",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rucd_vehicles_total",
		Help: "Total number of tracked vehicles",
	}, func() float64 {
		return float64(service.VehicleCount())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncRemindersScheduled(_ string)                   {}
func (n *noopMetrics) IncRemindersCancelled(_ string, _ int)            {}
func (n *noopMetrics) IncRemindersFired(_ string)                       {}
func (n *noopMetrics) IncRemindersSuppressed(_ string)                  {}
func (n *noopMetrics) SetAttentionCount(_ int)                          {}
