package telemetry

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func newResource(serviceName string) (*resource.Resource, error) {
	version := "devel"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
}

const (
	protocolGrpc = "grpc"
	protocolHttp = "http"
)

// protocol picks grpc over http, ok is false when neither endpoint is set
// and the signal should not be exported.
func (c OtlpConnConfig) protocol() (protocol string, endpoint string, ok bool) {
	switch {
	case c.GrpcEndpoint != "":
		return protocolGrpc, c.GrpcEndpoint, true
	case c.HttpEndpoint != "":
		return protocolHttp, c.HttpEndpoint, true
	}
	return "", "", false
}

// newTraceProvider returns nil when traces are not configured.
func newTraceProvider(ctx context.Context, r *resource.Resource, c OtlpConnConfig) (*trace.TracerProvider, error) {
	protocol, endpoint, ok := c.protocol()
	if !ok {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter trace.SpanExporter
	var err error
	if protocol == protocolGrpc {
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	} else {
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithHeaders(c.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("trace exporter initialized", "protocol", protocol, "endpoint", endpoint)

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

// newMetricProvider returns nil when metrics are not configured.
func newMetricProvider(ctx context.Context, r *resource.Resource, c OtlpConnConfig, interval time.Duration) (*metric.MeterProvider, error) {
	protocol, endpoint, ok := c.protocol()
	if !ok {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter metric.Exporter
	var err error
	if protocol == protocolGrpc {
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(endpoint),
			otlpmetricgrpc.WithHeaders(c.Headers),
		)
	} else {
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(endpoint),
			otlpmetrichttp.WithHeaders(c.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("metric exporter initialized", "protocol", protocol, "endpoint", endpoint, "interval", interval)

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(r),
	), nil
}
