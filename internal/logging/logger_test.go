package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestWithContextAddsTraceFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure("debug", "garage-test")

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	Errorf(ctx, "slot %d already occupied", 3)
	span.End()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "slot 3 already occupied", entry["message"])
	assert.Equal(t, "error", entry["severity"])
	assert.Equal(t, "garage-test", entry["service.name"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestWithContextWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Configure("info", "garage-test")

	Warnf(context.Background(), "no ticket for %s", "ABC1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "no ticket for ABC1", entry["message"])
	assert.Equal(t, "warning", entry["severity"])
	assert.NotContains(t, entry, "trace_id")
}
