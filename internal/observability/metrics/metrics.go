package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module registers the shared metrics against the default registry.
var Module = fx.Provide(func() *Metrics {
	return New(prometheus.DefaultRegisterer)
})

// Metrics bundles the Prometheus collectors used across the service.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	PVGISRequests   *prometheus.CounterVec
	PVGISFallbacks  prometheus.Counter
	BlockedOutbound prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helios_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helios_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PVGISRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helios_pvgis_requests_total",
			Help: "Outbound PVGIS requests by outcome.",
		}, []string{"outcome"}),
		PVGISFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helios_pvgis_fallback_total",
			Help: "Calculations served by the fallback estimator.",
		}),
		BlockedOutbound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helios_blocked_outbound_total",
			Help: "Outbound requests blocked by the hostname allow-list.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequests,
			m.HTTPDuration,
			m.PVGISRequests,
			m.PVGISFallbacks,
			m.BlockedOutbound,
		)
	}

	return m
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.HTTPRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
