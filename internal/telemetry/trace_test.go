package telemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"imagegate/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func newRecordingTrace() (*Trace, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &Trace{TracerProvider: tp, ServiceName: "imagegate-test"}, recorder
}

func attributeMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestApplyTraceAttributes_OmitEmpty(t *testing.T) {
	trace, recorder := newRecordingTrace()

	_, span, end := trace.WithSpan(context.Background(), "credential.validate")
	trace.ApplyTraceAttributes(span, core.TraceCredentialMeta{Op: "validate", Category: "image", Used: 2, Quota: 5})
	end(nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "credential.validate", ended[0].Name())

	attrs := attributeMap(ended[0].Attributes())
	assert.Equal(t, "validate", attrs["op"].AsString())
	assert.Equal(t, "image", attrs["usage.category"].AsString())
	assert.Equal(t, int64(2), attrs["usage.used"].AsInt64())
	// 非 omitempty 的零值仍會寫入
	assert.Contains(t, attrs, "credential.is_admin")
	assert.False(t, attrs["credential.is_admin"].AsBool())
	// omitempty 的零值略過
	assert.NotContains(t, attrs, "credential.code")
	assert.NotContains(t, attrs, "credential.reason")
}

func TestApplyTraceAttributes_PointerAndMap(t *testing.T) {
	trace, recorder := newRecordingTrace()

	_, span, end := trace.WithSpan(context.Background(), "logger")
	trace.ApplyTraceAttributes(span, &core.LoggerRequestMeta{
		Method:  "POST",
		Path:    "/api/images/generate",
		Headers: map[string]string{"Content-Type": "application/json"},
	})
	end(nil)

	attrs := attributeMap(recorder.Ended()[0].Attributes())
	assert.Equal(t, "POST", attrs["request.method"].AsString())
	assert.Equal(t, "application/json", attrs["http.request.header.Content-Type"].AsString())
}

func TestEndSpan_RecordsError(t *testing.T) {
	trace, recorder := newRecordingTrace()

	_, _, end := trace.WithSpan(context.Background(), "provider.call")
	end(errors.New("gemini unavailable"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "gemini unavailable", ended[0].Status().Description)
}

func TestNoopTrace(t *testing.T) {
	trace := &Trace{}

	ctx, span, end := trace.WithSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	assert.NotPanics(t, func() {
		trace.ApplyTraceAttributes(span, core.TraceCostMeta{Operation: "generate_image", Cost: 0.039})
		end(errors.New("ignored"))
	})
	assert.False(t, span.SpanContext().IsValid())
}

func TestParseTraceTag(t *testing.T) {
	name, omit := parseTraceTag("credential.code,omitempty")
	assert.Equal(t, "credential.code", name)
	assert.True(t, omit)

	name, omit = parseTraceTag("op")
	assert.Equal(t, "op", name)
	assert.False(t, omit)
}

func TestPrettifyFuncName(t *testing.T) {
	assert.Equal(t, "ImageService.Generate", prettifyFuncName("imagegate/internal/service.(*ImageService).Generate-fm"))
	assert.Equal(t, "CostService.Record", prettifyFuncName("imagegate/internal/service.(*CostService).Record.func1"))
	assert.Equal(t, "NewClient", prettifyFuncName("imagegate/internal/service/provider.NewClient"))
}

func TestPropagator_CloudTraceHeader(t *testing.T) {
	carrier := propagation.HeaderCarrier(http.Header{})
	carrier.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b12000100000/1;o=1")

	ctx := newPropagator().Extract(context.Background(), carrier)
	sc := oteltrace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsValid())
	assert.Equal(t, "105445aa7843bc8bf206b12000100000", sc.TraceID().String())
	assert.Equal(t, "0000000000000001", sc.SpanID().String())

	// traceparent 優先
	carrier.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	ctx = newPropagator().Extract(context.Background(), carrier)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", oteltrace.SpanContextFromContext(ctx).TraceID().String())
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), newSampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), newSampler(1.5).Description())
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
