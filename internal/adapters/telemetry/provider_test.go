package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/pack/internal/adapters/telemetry"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func TestOTelTracer_SpanAttributesAndErrors(t *testing.T) {
	sr := setupRecorder(t)
	tracer := telemetry.NewOTelTracer("test")

	_, span := tracer.Start(context.Background(), "esm")
	span.SetAttribute("pack.format", "esm")
	span.SetAttribute("pack.artifacts", 3)
	span.SetAttribute("pack.minify", true)
	span.SetAttribute("pack.entries", []string{"src/index.ts"})
	span.SetAttribute("pack.other", struct{}{})
	span.RecordError(errors.New("boom"))
	_, err := span.Write([]byte("log line"))
	require.NoError(t, err)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	attrs := ended[0].Attributes()
	assert.Contains(t, attrs, attribute.String("pack.format", "esm"))
	assert.Contains(t, attrs, attribute.Int("pack.artifacts", 3))
	assert.Contains(t, attrs, attribute.Bool("pack.minify", true))
	assert.Equal(t, "boom", ended[0].Status().Description)

	var names []string
	for _, ev := range ended[0].Events() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "log")
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	sr := setupRecorder(t)

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().OnPlanEmit([]string{"esm", "cjs"})

	tracer := telemetry.NewOTelTracer("test").WithRenderer(renderer)

	ctx, root := tracer.Start(context.Background(), "build", ports.WithRoot())
	tracer.EmitPlan(ctx, []string{"esm", "cjs"})
	root.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "plan_emitted", ended[0].Events()[0].Name)
}

func TestOTelTracer_StreamsOutputToRenderer(t *testing.T) {
	sr := setupRecorder(t)

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tracer := telemetry.NewOTelTracer("test").WithRenderer(renderer)
	_, span := tracer.Start(context.Background(), "esm")

	renderer.EXPECT().OnTargetLog(gomock.Any(), []byte("Copied assets to dist/assets\n"))

	_, err := span.Write([]byte("Copied assets to dist/assets\n"))
	require.NoError(t, err)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.Int("pack.output_bytes", 29))
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx, span := tracer.Start(context.Background(), "x", ports.WithRoot())
	require.NotNil(t, ctx)

	tracer.EmitPlan(ctx, []string{"x"})
	span.SetAttribute("k", "v")
	span.RecordError(errors.New("e"))
	n, err := span.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	span.End()
}
