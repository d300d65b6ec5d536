// Package monitoring exposes Prometheus metrics for the engine.
package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Instance metrics
	InstancesActive prometheus.Gauge
	InstancesTotal  prometheus.Counter

	// Engine metrics
	LayoutPasses          prometheus.Counter
	ScrollSyncs           prometheus.Counter
	AnimationsStarted     prometheus.Counter
	AnimationsInterrupted prometheus.Counter
	EventsDispatched      *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minimapd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minimapd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		InstancesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "minimapd_instances_active",
			Help: "Number of live minimap instances",
		}),
		InstancesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minimapd_instances_total",
			Help: "Total number of minimap instances created",
		}),
		LayoutPasses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minimapd_layout_passes_total",
			Help: "Total number of layout passes",
		}),
		ScrollSyncs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minimapd_scroll_syncs_total",
			Help: "Total number of scroll mirroring passes",
		}),
		AnimationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minimapd_animations_started_total",
			Help: "Total number of smooth scrolls started",
		}),
		AnimationsInterrupted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minimapd_animations_interrupted_total",
			Help: "Total number of smooth scrolls interrupted by a click",
		}),
		EventsDispatched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minimapd_events_dispatched_total",
				Help: "Total input events dispatched, by type",
			},
			[]string{"type"},
		),
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "minimapd_ws_connections",
			Help: "Number of open WebSocket sessions",
		}),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minimapd_ws_messages_total",
				Help: "Total WebSocket messages, by direction and type",
			},
			[]string{"direction", "type"},
		),
	}
}

// GinMiddleware records per-request metrics.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := c.Writer.Status()
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, statusLabel(status)).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func statusLabel(code int) string {
	switch {
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
