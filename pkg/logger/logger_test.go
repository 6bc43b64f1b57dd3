package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev, prevLevel := Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	InitWithWriter(&buf, "voltmarket-test")
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestWithContext_AddsTraceIDs(t *testing.T) {
	buf := capture(t)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Info(ctx).Msg("hello")

	entry := decode(t, buf)
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "voltmarket-test", entry["service"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestWithContext_NoSpan(t *testing.T) {
	buf := capture(t)

	Warn(context.Background()).Msg("plain")

	entry := decode(t, buf)
	assert.NotContains(t, entry, "trace_id")
	assert.Equal(t, "warn", entry["level"])
}

func TestComponent(t *testing.T) {
	buf := capture(t)

	l := Component("session")
	l.Info().Msg("ready")

	assert.Equal(t, "session", decode(t, buf)["component"])
}

func TestSetLevel(t *testing.T) {
	buf := capture(t)

	SetLevel("error")
	Info(context.Background()).Msg("dropped")
	assert.Zero(t, buf.Len())

	SetLevel("bogus")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
