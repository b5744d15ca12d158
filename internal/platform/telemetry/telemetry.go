// Package telemetry provides prometheus metrics and OpenTelemetry spans for
// the export pipeline and the local asset host.
//
// The core never installs a trace SDK. Spans are no-ops until the host
// registers a TracerProvider with otel.SetTracerProvider.
package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds the telemetry switches.
type Config struct {
	ServiceName    string
	MetricsEnabled *bool // nil = true
	TracingEnabled *bool // nil = true
}

func (c *Config) metricsOn() bool {
	return c.MetricsEnabled == nil || *c.MetricsEnabled
}

func (c *Config) tracingOn() bool {
	return c.TracingEnabled == nil || *c.TracingEnabled
}

// BoolPtr is a helper to create a *bool for Config fields.
func BoolPtr(b bool) *bool {
	return &b
}

// Asset cache outcomes.
const (
	CacheHit         = "hit"
	CacheMiss        = "miss"
	CacheRevalidated = "revalidated"
	CacheStale       = "stale"
	CacheError       = "error"
)

// Export outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// Provider owns the collectors. A nil *Provider is valid and records
// nothing, so components can take one optionally.
type Provider struct {
	cfg      Config
	registry *prometheus.Registry

	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	assetCache     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	activeRequests prometheus.Gauge
}

// NewProvider registers the paperwork collectors on reg. A nil reg gets a
// fresh registry.
func NewProvider(cfg Config, reg *prometheus.Registry) *Provider {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "paperwork"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	p := &Provider{
		cfg:      cfg,
		registry: reg,
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paperwork",
			Name:      "exports_total",
			Help:      "Exports by formpack, format and outcome.",
		}, []string{"formpack", "format", "status"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paperwork",
			Name:      "export_duration_seconds",
			Help:      "Time spent producing one export.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"format"}),
		assetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paperwork",
			Name:      "asset_cache_requests_total",
			Help:      "Asset cache lookups by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paperwork",
			Name:      "http_requests_total",
			Help:      "Asset host requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paperwork",
			Name:      "http_request_duration_seconds",
			Help:      "Asset host request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "paperwork",
			Name:      "http_active_requests",
			Help:      "Asset host requests in flight.",
		}),
	}
	reg.MustRegister(p.exports, p.exportDuration, p.assetCache, p.httpRequests, p.httpDuration, p.activeRequests)
	return p
}

// Registry returns the registry the collectors live on.
func (p *Provider) Registry() *prometheus.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

func (p *Provider) metricsOn() bool {
	return p != nil && p.cfg.metricsOn()
}

// ObserveExport counts one export and its duration.
func (p *Provider) ObserveExport(formpackID, format string, d time.Duration, err error) {
	if !p.metricsOn() {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	p.exports.WithLabelValues(formpackID, format, status).Inc()
	p.exportDuration.WithLabelValues(format).Observe(d.Seconds())
}

// AssetCacheResult counts one asset cache lookup.
func (p *Provider) AssetCacheResult(result string) {
	if !p.metricsOn() {
		return
	}
	p.assetCache.WithLabelValues(result).Inc()
}

// ---------------------------------------------------------------------------
// MetricsMiddleware
// ---------------------------------------------------------------------------

// MetricsMiddleware returns an Echo middleware that records request count,
// latency and in-flight requests.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.metricsOn() {
				return next(c)
			}

			p.activeRequests.Inc()
			defer p.activeRequests.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			route := routeOf(c)
			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil && errors.As(err, &he) {
				status = he.Code
			}

			p.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			p.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// routeOf prefers the route pattern over the concrete path to keep label
// cardinality bounded.
func routeOf(c echo.Context) string {
	if route := c.Path(); route != "" {
		return route
	}
	return c.Request().URL.Path
}

// ---------------------------------------------------------------------------
// PrometheusHandler
// ---------------------------------------------------------------------------

// PrometheusHandler serves the registry in the Prometheus exposition format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	if p == nil {
		return echo.WrapHandler(promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}))
	}
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}
