package metric

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fleetdesk"

// Cache event labels.
const (
	CacheHitMemory = "hit_memory"
	CacheHitLocal  = "hit_local"
	CacheMiss      = "miss"
	CacheRefresh   = "refresh"
	CacheInvalid   = "invalidate"
)

// Registry holds all client metrics.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheEvents     *prometheus.CounterVec
	SessionExpiries prometheus.Counter
}

// NewRegistry creates a registry with all client metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "API requests issued by the client, by method and status class",
		}, []string{"method", "status_class"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API request latency as observed by the client",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup_cache",
			Name:      "events_total",
			Help:      "Route tree cache lookups by outcome",
		}, []string{"event"}),
		SessionExpiries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "session_expiries_total",
			Help:      "Responses with status 401 that cleared the stored token",
		}),
	}

	r.registry.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.CacheEvents,
		r.SessionExpiries,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Prometheus returns the underlying registry for additional collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// ObserveRequest records one finished API call. Status 0 means the request
// never produced a response.
func (r *Registry) ObserveRequest(method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// SessionExpired records a 401 that cleared the stored token.
func (r *Registry) SessionExpired() {
	if r == nil {
		return
	}
	r.SessionExpiries.Inc()
}

// CacheEvent records a route tree cache outcome.
func (r *Registry) CacheEvent(event string) {
	if r == nil {
		return
	}
	r.CacheEvents.WithLabelValues(event).Inc()
}

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// StatusClass maps an HTTP status to "2xx", "4xx", ... or "error".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
