// Package middleware provides observability hooks for navigations and
// bundle loads.
//
// This package includes:
//   - Prometheus metrics, usable as navigation.Hooks and bundle.Observer
//   - OpenTelemetry tracing, one span per navigation
//
// # Prometheus Metrics
//
//	m := middleware.Prometheus()
//	loader := bundle.NewLoader(source, bundle.WithObserver(m))
//	ctrl, _ := navigation.New(routes, loader, navigation.WithHooks(m))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Tracing
//
//	ctrl, _ := navigation.New(routes, loader,
//	    navigation.WithHooks(middleware.OpenTelemetry(
//	        middleware.WithTracerName("bank-ui"),
//	    )),
//	)
//
// Spans are started from the context passed to Navigate, so bundle sources
// that make network calls inherit the trace. The tracer comes from the
// global provider unless WithTracerProvider is used.
package middleware
