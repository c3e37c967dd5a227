package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.Enabled)
	require.NoError(t, cfg.Validate())

	cfg.Enabled = true
	require.NoError(t, cfg.Validate())

	cfg.SampleRate = 1.5
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Enabled = true
	cfg.OTLPEndpoint = ""
	require.Error(t, cfg.Validate())
}

func TestDisabledProvider(t *testing.T) {
	p, err := NewProvider(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, p.HealthCheck())
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.SampleRate = -1

	_, err := NewProvider(cfg)
	require.Error(t, err)

	p := &Provider{config: cfg}
	require.Error(t, p.HealthCheck())
}

func TestMarketplaceSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx, httpSpan := StartHTTPSpan(context.Background(), "GET", "/api/v1/marketplace/params", "req-1")
	_, span := StartMarketplaceSpan(ctx, "deliver", MechAttr("mech1"), RequestAttr("0x01"))
	End(span, errors.New("overflow"))
	End(httpSpan, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	deliver := ended[0]
	require.Equal(t, "marketplace.deliver", deliver.Name())
	require.Equal(t, codes.Error, deliver.Status().Code)
	require.Equal(t, ended[1].SpanContext().SpanID(), deliver.Parent().SpanID())
	require.Len(t, deliver.Events(), 1)

	require.Equal(t, "GET /api/v1/marketplace/params", ended[1].Name())
	require.Equal(t, codes.Unset, ended[1].Status().Code)
}
