package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(context.Background(), TraceConfig{ServiceName: "test", Writer: &buf})
	require.NoError(t, err)
	require.NotNil(t, p.Tracer())

	_, span := p.StartSpan(context.Background(), "noop")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestNewProvider_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(context.Background(), TraceConfig{Enabled: true, Writer: &buf})
	require.NoError(t, err)

	_, span := p.StartSpan(context.Background(), "list-droplets")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "list-droplets")
}

func TestOTELHook_AddsTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Info().Ctx(ctx).Msg("with span")

	assert.Contains(t, buf.String(), `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	assert.Contains(t, buf.String(), `"span_id":"`+span.SpanContext().SpanID().String()+`"`)
}

func TestOTELHook_NoContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Info().Msg("plain")

	assert.NotContains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), `"message":"plain"`)
}

func TestSetupLogger_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	logger := SetupLogger(&buf, false)
	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	logger = SetupLogger(&buf, true)
	logger.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
