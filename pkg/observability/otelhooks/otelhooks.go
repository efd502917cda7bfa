// Package otelhooks implements the observability hooks on top of
// OpenTelemetry.
//
// Metrics go to the supplied meter. Events are also attached to the span
// found in the context, when one is recording, so a layout request traced
// by the server carries its cache and layout events.
//
//	h, err := otelhooks.New(otel.Meter("strata"))
//	if err != nil { ... }
//	h.Install()
package otelhooks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/observability"
)

// Metric names.
const (
	MetricLayoutTotal     = "strata.layout.total"
	MetricLayoutDuration  = "strata.layout.duration"
	MetricLayoutCrossings = "strata.layout.crossings"
	MetricRenderTotal     = "strata.render.total"
	MetricRenderDuration  = "strata.render.duration"
	MetricCacheTotal      = "strata.cache.total"
	MetricCacheBytes      = "strata.cache.bytes"
	MetricRequestTotal    = "strata.http.request.total"
	MetricRequestDuration = "strata.http.request.duration"
	MetricRequestErrors   = "strata.http.request.errors"
)

// Hooks records pipeline, cache and HTTP events as OpenTelemetry metrics
// and span events. It implements all three hook interfaces.
type Hooks struct {
	layoutTotal     metric.Int64Counter
	layoutDuration  metric.Float64Histogram
	layoutCrossings metric.Int64Histogram
	renderTotal     metric.Int64Counter
	renderDuration  metric.Float64Histogram
	cacheTotal      metric.Int64Counter
	cacheBytes      metric.Int64Counter
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

// New creates the metric instruments on meter.
func New(meter metric.Meter) (*Hooks, error) {
	var h Hooks
	var err error

	if h.layoutTotal, err = meter.Int64Counter(MetricLayoutTotal,
		metric.WithDescription("Layouts computed, by cycle strategy and status")); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricLayoutTotal, err)
	}
	if h.layoutDuration, err = meter.Float64Histogram(MetricLayoutDuration,
		metric.WithDescription("Duration of layout computations in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricLayoutDuration, err)
	}
	if h.layoutCrossings, err = meter.Int64Histogram(MetricLayoutCrossings,
		metric.WithDescription("Edge crossings left in computed layouts")); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricLayoutCrossings, err)
	}
	if h.renderTotal, err = meter.Int64Counter(MetricRenderTotal,
		metric.WithDescription("Render runs, by status")); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRenderTotal, err)
	}
	if h.renderDuration, err = meter.Float64Histogram(MetricRenderDuration,
		metric.WithDescription("Duration of render runs in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRenderDuration, err)
	}
	if h.cacheTotal, err = meter.Int64Counter(MetricCacheTotal,
		metric.WithDescription("Cache operations, by key type and result")); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricCacheTotal, err)
	}
	if h.cacheBytes, err = meter.Int64Counter(MetricCacheBytes,
		metric.WithDescription("Bytes written to the cache"),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricCacheBytes, err)
	}
	if h.requestTotal, err = meter.Int64Counter(MetricRequestTotal,
		metric.WithDescription("HTTP requests, by method, route and status")); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestTotal, err)
	}
	if h.requestDuration, err = meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}
	if h.requestErrors, err = meter.Int64Counter(MetricRequestErrors,
		metric.WithDescription("HTTP requests answered with an error, by code")); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestErrors, err)
	}
	return &h, nil
}

// Install registers h as the global pipeline, cache and HTTP hooks.
func (h *Hooks) Install() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// =============================================================================
// Pipeline
// =============================================================================

func (h *Hooks) OnLayoutStart(ctx context.Context, strategy string, nodeCount, edgeCount int) {
	addEvent(ctx, "layout.start",
		attribute.String("strategy", strategy),
		attribute.Int("nodes", nodeCount),
		attribute.Int("edges", edgeCount))
}

func (h *Hooks) OnLayoutComplete(ctx context.Context, strategy string, crossings int, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("status", status(err)),
	)
	h.layoutTotal.Add(ctx, 1, attrs)
	h.layoutDuration.Record(ctx, d.Seconds(), attrs)
	if err == nil {
		h.layoutCrossings.Record(ctx, int64(crossings), metric.WithAttributes(attribute.String("strategy", strategy)))
	}
	addEvent(ctx, "layout.complete", attribute.Int("crossings", crossings))
	recordError(ctx, err)
}

func (h *Hooks) OnRenderStart(ctx context.Context, formats []string) {
	addEvent(ctx, "render.start", attribute.StringSlice("formats", formats))
}

func (h *Hooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("formats", strings.Join(formats, ",")),
		attribute.String("status", status(err)),
	)
	h.renderTotal.Add(ctx, 1, attrs)
	h.renderDuration.Record(ctx, d.Seconds(), attrs)
	recordError(ctx, err)
}

// =============================================================================
// Cache
// =============================================================================

func (h *Hooks) OnCacheHit(ctx context.Context, keyType string) {
	h.cache(ctx, keyType, "hit")
}

func (h *Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.cache(ctx, keyType, "miss")
}

func (h *Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.cache(ctx, keyType, "set")
	h.cacheBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *Hooks) cache(ctx context.Context, keyType, result string) {
	h.cacheTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.String("result", result),
	))
	addEvent(ctx, "cache."+result, attribute.String("key_type", keyType))
}

// =============================================================================
// HTTP
// =============================================================================

func (h *Hooks) OnRequest(ctx context.Context, method, route string) {
	addEvent(ctx, "http.request",
		attribute.String("method", method),
		attribute.String("route", route))
}

func (h *Hooks) OnResponse(ctx context.Context, method, route string, statusCode int, d time.Duration) {
	h.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", statusCode),
	))
	h.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

func (h *Hooks) OnError(ctx context.Context, method, route string, err error) {
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	h.requestErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("code", code),
	))
	recordError(ctx, err)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func addEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

func recordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.UserMessage(err))
	}
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
