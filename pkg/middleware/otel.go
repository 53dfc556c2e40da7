package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/lazyroute/pkg/navigation"
)

// Default tracer name for lazyroute navigations.
const defaultTracerName = "lazyroute"

// SpanName is the name of the span started for every navigation.
const SpanName = "lazyroute.navigate"

// OTelConfig configures navigation tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "lazyroute").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider

	// Filter determines which navigations to trace.
	// Return true to trace the navigation, false to skip.
	// If nil, all navigations are traced.
	Filter func(req navigation.Request) bool

	// AttributeExtractor adds custom attributes when a span starts.
	AttributeExtractor func(req navigation.Request) []attribute.KeyValue
}

// OTelOption configures navigation tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(req navigation.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req navigation.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing starts one span per navigation. It implements navigation.Hooks.
type Tracing struct {
	config OTelConfig
	tracer trace.Tracer
}

// OpenTelemetry creates a navigation hook that traces every navigation.
//
// The span:
//   - starts with the requested path, trigger and navigation ID
//   - ends with the final status, resolved path, redirect count and match kind
//   - records the error and an Error status for failed navigations
func OpenTelemetry(opts ...OTelOption) *Tracing {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{config: config, tracer: tp.Tracer(config.TracerName)}
}

// spanKey marks spans started by Tracing, so OnFinish never ends a span it
// does not own.
type spanKey struct{}

// OnStart implements navigation.Hooks.
func (t *Tracing) OnStart(ctx context.Context, req navigation.Request) context.Context {
	if t.config.Filter != nil && !t.config.Filter(req) {
		return ctx
	}

	attrs := []attribute.KeyValue{
		attribute.String("lazyroute.path", req.Path),
		attribute.String("lazyroute.trigger", string(req.Trigger)),
		attribute.Int64("lazyroute.navigation_id", int64(req.ID)),
	}
	if req.Replace {
		attrs = append(attrs, attribute.Bool("lazyroute.replace", true))
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(req)...)
	}

	ctx, span := t.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return context.WithValue(ctx, spanKey{}, span)
}

// OnFinish implements navigation.Hooks.
func (t *Tracing) OnFinish(ctx context.Context, out navigation.Outcome) {
	span := SpanFromContext(ctx)
	if span == nil {
		return
	}
	defer span.End()

	span.SetAttributes(
		attribute.String("lazyroute.status", out.Status.String()),
		attribute.String("lazyroute.resolved_path", out.Path),
		attribute.Int("lazyroute.redirects", out.Redirects),
	)
	if out.MatchedBy != "" {
		span.SetAttributes(attribute.String("lazyroute.matched_by", out.MatchedBy))
	}
	if out.View != nil {
		span.SetAttributes(attribute.String("lazyroute.view", out.View.ID))
	}

	switch out.Status {
	case navigation.Committed:
		span.SetStatus(codes.Ok, "")
	case navigation.Failed:
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
}

// SpanFromContext returns the navigation span started by Tracing, or nil.
//
// Example:
//
//	source := bundle.SourceFunc(func(ctx context.Context, id string) (*bundle.Bundle, error) {
//	    if span := middleware.SpanFromContext(ctx); span != nil {
//	        span.AddEvent("fetching " + id)
//	    }
//	    ...
//	})
func SpanFromContext(ctx context.Context) trace.Span {
	span, _ := ctx.Value(spanKey{}).(trace.Span)
	return span
}
