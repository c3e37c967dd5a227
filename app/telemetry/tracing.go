// Package telemetry configures OpenTelemetry tracing and metrics for mechd and
// provides span helpers for marketplace operations.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/mechx-labs/mechx"

// Config holds the configuration for telemetry
type Config struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp-endpoint"`
	SampleRate   float64 `mapstructure:"sample-rate"`
	Environment  string  `mapstructure:"environment"`

	// ServiceVersion and ChainID are attached to every span and metric.
	ServiceVersion string `mapstructure:"-"`
	ChainID        string `mapstructure:"-"`

	// PrometheusEnabled bridges OpenTelemetry meters into the default Prometheus registry.
	PrometheusEnabled bool `mapstructure:"prometheus"`
}

// DefaultConfig returns a disabled telemetry config that samples everything
// once enabled.
func DefaultConfig() Config {
	return Config{
		OTLPEndpoint: "localhost:4318",
		SampleRate:   1,
		Environment:  "devnet",
	}
}

// Validate checks the exporter settings of an enabled config.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.OTLPEndpoint == "" {
		return errors.New("otlp endpoint is required")
	}
	if _, err := url.Parse(c.OTLPEndpoint); err != nil {
		return fmt.Errorf("invalid otlp endpoint: %w", err)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample rate %v outside [0, 1]", c.SampleRate)
	}
	return nil
}

// Provider owns the tracer and meter providers. A disabled Provider hands out
// the global no-op implementations.
type Provider struct {
	config Config

	tracerProvider *tracesdk.TracerProvider
	meterProvider  *metricsdk.MeterProvider
}

// NewProvider installs the global tracer provider and, when requested, the
// Prometheus-backed meter provider.
func NewProvider(cfg Config) (*Provider, error) {
	p := &Provider{config: cfg}
	if !cfg.Enabled {
		return p, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("mechd"),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
			attribute.String("chain.id", cfg.ChainID),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.startTracing(res); err != nil {
		return nil, err
	}
	if cfg.PrometheusEnabled {
		if err := p.startMetrics(res); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Provider) startTracing(res *resource.Resource) error {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(p.config.OTLPEndpoint, "http://"), "https://")
	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	p.tracerProvider = tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter, tracesdk.WithBatchTimeout(5*time.Second)),
		tracesdk.WithResource(res),
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(p.config.SampleRate))),
	)
	otel.SetTracerProvider(p.tracerProvider)
	return nil
}

func (p *Provider) startMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	p.meterProvider = metricsdk.NewMeterProvider(
		metricsdk.WithResource(res),
		metricsdk.WithReader(exporter),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

// Shutdown flushes and stops both providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Tracer returns the mechx tracer.
func (p *Provider) Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns the mechx meter.
func (p *Provider) Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// HealthCheck reports whether every enabled provider is running. It is
// registered as a health probe.
func (p *Provider) HealthCheck() error {
	if !p.config.Enabled {
		return nil
	}
	if p.tracerProvider == nil {
		return errors.New("tracer provider not initialized")
	}
	if p.config.PrometheusEnabled && p.meterProvider == nil {
		return errors.New("meter provider not initialized")
	}
	return nil
}

// StartHTTPSpan starts a server span for an API route.
func StartHTTPSpan(ctx context.Context, method, route, requestID string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.HTTPMethodKey.String(method),
			semconv.HTTPRouteKey.String(route),
			attribute.String("request.id", requestID),
		),
	)
}

// StartMarketplaceSpan starts a span for a marketplace operation such as
// request, deliver or payout.
func StartMarketplaceSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "marketplace."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append(attrs, attribute.String("marketplace.operation", operation))...),
	)
}

// MechAttr tags a span with a mech address.
func MechAttr(mech string) attribute.KeyValue {
	return attribute.String("marketplace.mech", mech)
}

// RequestAttr tags a span with a request id.
func RequestAttr(id string) attribute.KeyValue {
	return attribute.String("marketplace.request_id", id)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
