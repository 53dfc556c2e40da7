package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/lazyroute/pkg/bundle"
	"github.com/vango-dev/lazyroute/pkg/navigation"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bankRoutes() *routetable.Table {
	return routetable.New(
		routetable.Entry{Pattern: "", Match: routetable.MatchExact, Handler: routetable.LazyBundle{LoaderID: "dashboard"}},
		routetable.Entry{Pattern: "loan", Handler: routetable.LazyBundle{LoaderID: "loan"}},
		routetable.Entry{Pattern: "broken", Handler: routetable.LazyBundle{LoaderID: "broken"}},
		routetable.Entry{Pattern: "**", Match: routetable.MatchExact, Handler: routetable.Redirect{Target: ""}},
	)
}

func TestMetricsRecordNavigationsAndBundles(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	src := bundle.SourceFunc(func(ctx context.Context, id string) (*bundle.Bundle, error) {
		if id == "broken" {
			return nil, errors.New("chunk load error")
		}
		return &bundle.Bundle{}, nil
	})
	loader := bundle.NewLoader(src, bundle.WithObserver(m), bundle.WithLogger(quietLogger()))
	ctrl, err := navigation.New(bankRoutes(), loader,
		navigation.WithHooks(m),
		navigation.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	ctrl.Navigate(ctx, "/")
	ctrl.Navigate(ctx, "/loan")
	ctrl.Navigate(ctx, "/loan")
	ctrl.Navigate(ctx, "/nowhere")
	ctrl.Navigate(ctx, "/broken")

	tests := []struct {
		name string
		c    prometheus.Counter
		want float64
	}{
		{"committed", m.navigationsTotal.WithLabelValues("committed"), 4},
		{"failed", m.navigationsTotal.WithLabelValues("failed"), 1},
		{"redirects", m.redirectsTotal, 1},
		{"dashboard fetch", m.bundleFetchesTotal.WithLabelValues("dashboard", "success"), 1},
		{"loan fetch", m.bundleFetchesTotal.WithLabelValues("loan", "success"), 1},
		{"broken fetch", m.bundleFetchesTotal.WithLabelValues("broken", "error"), 1},
		{"loan hits", m.bundleCacheHits.WithLabelValues("loan"), 1},
		{"dashboard hits", m.bundleCacheHits.WithLabelValues("dashboard"), 1},
	}
	for _, tt := range tests {
		if got := metricCounterValue(t, tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if got := metricHistogramCount(t, m.navigationDuration.WithLabelValues("committed")); got != 4 {
		t.Errorf("committed duration samples = %d, want 4", got)
	}
	if got := metricHistogramCount(t, m.bundleFetchDuration.WithLabelValues("broken")); got != 1 {
		t.Errorf("broken fetch duration samples = %d, want 1", got)
	}
}

func TestMetricsFallbackAndJoin(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.OnFinish(context.Background(), navigation.Outcome{
		Status:    navigation.Committed,
		MatchedBy: navigation.MatchedByFallback,
		Redirects: 2,
		Duration:  time.Millisecond,
	})
	m.BundleJoined("account")
	m.BundleJoined("account")

	if got := metricCounterValue(t, m.fallbacksTotal); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.redirectsTotal); got != 2 {
		t.Errorf("redirects = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.bundleJoined.WithLabelValues("account")); got != 2 {
		t.Errorf("joined = %v, want 2", got)
	}
}

func TestMetricsRegisteredNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "bank"}))
	m.OnFinish(context.Background(), navigation.Outcome{Status: navigation.Committed})
	m.BundleFetched("loan", time.Millisecond, nil)
	m.BundleCacheHit("loan")
	m.BundleJoined("loan")
	m.redirectsTotal.Add(0)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]bool{}
	for _, f := range families {
		got[f.GetName()] = true
		for _, metric := range f.GetMetric() {
			found := false
			for _, l := range metric.GetLabel() {
				if l.GetName() == "app" && l.GetValue() == "bank" {
					found = true
				}
			}
			if !found {
				t.Errorf("%s missing const label", f.GetName())
			}
		}
	}
	for _, name := range []string{
		"lazyroute_navigations_total",
		"lazyroute_navigation_duration_seconds",
		"lazyroute_redirects_total",
		"lazyroute_bundle_fetches_total",
		"lazyroute_bundle_fetch_duration_seconds",
		"lazyroute_bundle_cache_hits_total",
		"lazyroute_bundle_joined_total",
	} {
		if !got[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestPrometheusReturnsSingleton(t *testing.T) {
	globalMetricsMu.Lock()
	saved := globalMetrics
	globalMetrics = nil
	globalMetricsMu.Unlock()
	t.Cleanup(func() {
		globalMetricsMu.Lock()
		globalMetrics = saved
		globalMetricsMu.Unlock()
	})

	reg := prometheus.NewRegistry()
	a := Prometheus(WithRegistry(reg))
	b := Prometheus(WithRegistry(reg))
	if a != b {
		t.Error("Prometheus() should return the same instance")
	}
}
