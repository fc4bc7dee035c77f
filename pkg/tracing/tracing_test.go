package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	shutdown, err := Install("library-test", sdktrace.WithSpanProcessor(rec))
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return rec
}

func TestStartSpan_ParentChild(t *testing.T) {
	rec := installRecorder(t)

	ctx, parent := StartSpan(context.Background(), "test", "catalog.search")
	_, child := StartSpan(ctx, "test", "books.query")
	child.End()
	parent.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "books.query", spans[0].Name())
	assert.Equal(t, "catalog.search", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
}

func TestExtractIDs(t *testing.T) {
	installRecorder(t)

	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))

	ctx, span := StartSpan(context.Background(), "test", "op")
	defer span.End()

	assert.Len(t, ExtractTraceID(ctx), 32)
	assert.Len(t, ExtractSpanID(ctx), 16)
	assert.Equal(t, span.SpanContext().TraceID().String(), ExtractTraceID(ctx))
}

func TestRecordError(t *testing.T) {
	rec := installRecorder(t)

	_, span := StartSpan(context.Background(), "test", "loan.assign")
	RecordError(span, nil)
	RecordError(span, errors.New("stale instance"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "stale instance", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
}
