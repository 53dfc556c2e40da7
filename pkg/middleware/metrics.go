package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/lazyroute/pkg/navigation"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "lazyroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "lazyroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records navigation and bundle metrics. It implements
// navigation.Hooks and bundle.Observer.
type Metrics struct {
	navigationsTotal    *prometheus.CounterVec
	navigationDuration  *prometheus.HistogramVec
	redirectsTotal      prometheus.Counter
	fallbacksTotal      prometheus.Counter
	bundleFetchesTotal  *prometheus.CounterVec
	bundleFetchDuration *prometheus.HistogramVec
	bundleCacheHits     *prometheus.CounterVec
	bundleJoined        *prometheus.CounterVec
}

// globalMetrics is the instance registered with the default registerer.
// Created on first call to Prometheus().
var (
	globalMetrics   *Metrics
	globalMetricsMu sync.Mutex
)

// NewMetrics creates and registers a metrics set. Registering twice with the
// same registry panics; use Prometheus for the process-wide instance.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by final status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds, from request to final status",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"status"}),

		redirectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of redirects followed",
			ConstLabels: config.ConstLabels,
		}),

		fallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "fallbacks_total",
			Help:        "Total number of navigations resolved by a forced wildcard fallback",
			ConstLabels: config.ConstLabels,
		}),

		bundleFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bundle_fetches_total",
			Help:        "Total number of bundle source fetches by loader and result",
			ConstLabels: config.ConstLabels,
		}, []string{"loader", "result"}),

		bundleFetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bundle_fetch_duration_seconds",
			Help:        "Bundle fetch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"loader"}),

		bundleCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bundle_cache_hits_total",
			Help:        "Total number of bundle loads served from the cache",
			ConstLabels: config.ConstLabels,
		}, []string{"loader"}),

		bundleJoined: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bundle_joined_total",
			Help:        "Total number of bundle loads that shared an in-flight fetch",
			ConstLabels: config.ConstLabels,
		}, []string{"loader"}),
	}
}

// Prometheus returns the process-wide metrics, creating them with opts on
// the first call. Later calls ignore opts.
//
// Metrics collected:
//   - lazyroute_navigations_total: Counter of navigations by status
//   - lazyroute_navigation_duration_seconds: Histogram of navigation duration
//   - lazyroute_redirects_total: Counter of redirects followed
//   - lazyroute_fallbacks_total: Counter of forced wildcard fallbacks
//   - lazyroute_bundle_fetches_total: Counter of source fetches by loader and result
//   - lazyroute_bundle_fetch_duration_seconds: Histogram of fetch duration
//   - lazyroute_bundle_cache_hits_total: Counter of cached loads
//   - lazyroute_bundle_joined_total: Counter of loads that joined a fetch
func Prometheus(opts ...MetricsOption) *Metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = NewMetrics(opts...)
	}
	return globalMetrics
}

// OnStart implements navigation.Hooks.
func (m *Metrics) OnStart(ctx context.Context, _ navigation.Request) context.Context {
	return ctx
}

// OnFinish implements navigation.Hooks.
func (m *Metrics) OnFinish(_ context.Context, out navigation.Outcome) {
	status := out.Status.String()
	m.navigationsTotal.WithLabelValues(status).Inc()
	m.navigationDuration.WithLabelValues(status).Observe(out.Duration.Seconds())
	if out.Redirects > 0 {
		m.redirectsTotal.Add(float64(out.Redirects))
	}
	if out.MatchedBy == navigation.MatchedByFallback {
		m.fallbacksTotal.Inc()
	}
}

// BundleFetched implements bundle.Observer.
func (m *Metrics) BundleFetched(loaderID string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.bundleFetchesTotal.WithLabelValues(loaderID, result).Inc()
	m.bundleFetchDuration.WithLabelValues(loaderID).Observe(d.Seconds())
}

// BundleCacheHit implements bundle.Observer.
func (m *Metrics) BundleCacheHit(loaderID string) {
	m.bundleCacheHits.WithLabelValues(loaderID).Inc()
}

// BundleJoined implements bundle.Observer.
func (m *Metrics) BundleJoined(loaderID string) {
	m.bundleJoined.WithLabelValues(loaderID).Inc()
}
