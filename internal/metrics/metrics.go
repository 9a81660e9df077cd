package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	HTTPRequests      metric.Int64Counter
	HTTPDuration      metric.Float64Histogram
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter
	UpstreamRequests  metric.Int64Counter
	RefreshRuns       metric.Int64Counter
	Notifications     metric.Int64Counter
	ActiveConnections metric.Int64UpDownCounter
}

func Setup(serviceName string) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.HTTPRequests, err = meter.Int64Counter(
		"starcg_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"starcg_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CacheHits, err = meter.Int64Counter(
		"starcg_cache_hits_total",
		metric.WithDescription("Total number of result cache hits"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CacheMisses, err = meter.Int64Counter(
		"starcg_cache_misses_total",
		metric.WithDescription("Total number of result cache misses"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.UpstreamRequests, err = meter.Int64Counter(
		"starcg_upstream_requests_total",
		metric.WithDescription("Requests sent to the market website, by endpoint and outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RefreshRuns, err = meter.Int64Counter(
		"starcg_refresh_runs_total",
		metric.WithDescription("Price refresh ticks, by result"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.Notifications, err = meter.Int64Counter(
		"starcg_notifications_total",
		metric.WithDescription("Notifications emitted"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.ActiveConnections, err = meter.Int64UpDownCounter(
		"starcg_websocket_connections",
		metric.WithDescription("Number of active notification WebSocket connections"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.Handler()
	return m, handler, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

// RecordCacheHit counts a hit; kind is "market" or "history", never the raw key.
func (m *Metrics) RecordCacheHit(ctx context.Context, kind string) {
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordCacheMiss(ctx context.Context, kind string) {
	m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordUpstreamRequest(ctx context.Context, endpoint, outcome string) {
	m.UpstreamRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordRefreshRun(ctx context.Context, result string) {
	m.RefreshRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordNotification(ctx context.Context, priority int) {
	m.Notifications.Add(ctx, 1, metric.WithAttributes(attribute.Int("priority", priority)))
}

func (m *Metrics) IncrementConnections(ctx context.Context) {
	m.ActiveConnections.Add(ctx, 1)
}

func (m *Metrics) DecrementConnections(ctx context.Context) {
	m.ActiveConnections.Add(ctx, -1)
}
