package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OtlpEndpoint is where one signal is exported, grpc wins when both are set
// and nothing is exported when neither is.
type OtlpEndpoint struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (e OtlpEndpoint) enabled() bool {
	return e.GrpcEndpoint != "" || e.HttpEndpoint != ""
}

type OtlpConfig struct {
	Traces  OtlpEndpoint `json:"traces"`
	Metrics OtlpEndpoint `json:"metrics"`
	// MetricInterval defaults to 15 seconds.
	MetricIntervalSeconds int `json:"metric_interval_seconds"`
}

// Otlp holds the installed providers, either may be nil.
type Otlp struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// Shutdown flushes and stops every installed provider.
func (o Otlp) Shutdown(ctx context.Context) error {
	var errs []error
	if o.TracerProvider != nil {
		errs = append(errs, o.TracerProvider.Shutdown(ctx))
	}
	if o.MeterProvider != nil {
		errs = append(errs, o.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// SetupOtlp installs global trace and metric providers for the configured
// endpoints. Signals without an endpoint keep the otel no-op providers.
func SetupOtlp(ctx context.Context, serviceName string, cfg OtlpConfig) (Otlp, error) {
	if !cfg.Traces.enabled() && !cfg.Metrics.enabled() {
		return Otlp{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return Otlp{}, err
	}

	var out Otlp
	if cfg.Traces.enabled() {
		exporter, err := traceExporter(ctx, cfg.Traces)
		if err != nil {
			return Otlp{}, err
		}
		out.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(r),
		)
		otel.SetTracerProvider(out.TracerProvider)
	}

	if cfg.Metrics.enabled() {
		exporter, err := metricExporter(ctx, cfg.Metrics)
		if err != nil {
			out.Shutdown(context.Background())
			return Otlp{}, err
		}
		interval := 15 * time.Second
		if cfg.MetricIntervalSeconds > 0 {
			interval = time.Duration(cfg.MetricIntervalSeconds) * time.Second
		}
		out.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
			metric.WithResource(r),
		)
		otel.SetMeterProvider(out.MeterProvider)
	}
	return out, nil
}

func traceExporter(ctx context.Context, e OtlpEndpoint) (trace.SpanExporter, error) {
	if e.GrpcEndpoint != "" {
		slog.Info("trace exporter initialized", "type", "grpc", "endpoint", e.GrpcEndpoint)
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(e.GrpcEndpoint),
			otlptracegrpc.WithHeaders(e.Headers),
		)
	}
	slog.Info("trace exporter initialized", "type", "http", "endpoint", e.HttpEndpoint)
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(e.HttpEndpoint),
		otlptracehttp.WithHeaders(e.Headers),
	)
}

func metricExporter(ctx context.Context, e OtlpEndpoint) (metric.Exporter, error) {
	if e.GrpcEndpoint != "" {
		slog.Info("metric exporter initialized", "type", "grpc", "endpoint", e.GrpcEndpoint)
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(e.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(e.Headers),
		)
	}
	slog.Info("metric exporter initialized", "type", "http", "endpoint", e.HttpEndpoint)
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(e.HttpEndpoint),
		otlpmetrichttp.WithHeaders(e.Headers),
	)
}
