package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/pack/internal/core/ports"
)

// rootAttribute marks spans that group a whole run. The bridge does not
// report them to the renderer as targets.
const rootAttribute = "pack.root"

// outputBytesAttribute records how much output a target wrote to its span.
const outputBytesAttribute = "pack.output_bytes"

var _ ports.Tracer = (*OTelTracer)(nil)

// OTelTracer implements ports.Tracer with OpenTelemetry.
type OTelTracer struct {
	tracer trace.Tracer

	mu       sync.RWMutex
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer using the global provider.
func NewOTelTracer(name string) *OTelTracer {
	return &OTelTracer{tracer: otel.Tracer(name)}
}

// WithRenderer streams span output and plans to renderer.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

// Start creates a span. Writes to a non-root span are batched and forwarded
// to the renderer as target output.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if cfg.Root {
		startOpts = append(startOpts, trace.WithAttributes(attribute.Bool(rootAttribute, true)))
	}
	ctx, span := t.tracer.Start(ctx, name, startOpts...)

	t.mu.RLock()
	r := t.renderer
	t.mu.RUnlock()

	var batcher *BatchProcessor
	if r != nil && !cfg.Root {
		batcher = NewBatchProcessor(span.SpanContext().SpanID().String(), name, 0, 0, func(c Chunk) {
			r.OnTargetLog(c.SpanID, c.Data)
		})
	}

	return ctx, &OTelSpan{span: span, batcher: batcher}
}

// EmitPlan records the planned targets on the current span and announces them
// to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, targetNames []string) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("targets", targetNames),
		))
	}

	t.mu.RLock()
	r := t.renderer
	t.mu.RUnlock()
	if r != nil {
		r.OnPlanEmit(targetNames)
	}
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span    trace.Span
	batcher *BatchProcessor
}

// End flushes pending output, records its size and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
		s.span.SetAttributes(attribute.Int(outputBytesAttribute, s.batcher.Written()))
	}
	s.span.End()
}

// RecordError records err and marks the span failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write forwards p to the renderer, or records it as a span event when no
// renderer is attached.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

// NewProvider returns a TracerProvider that reports spans through bridge.
// The caller owns the provider and must shut it down.
func NewProvider(bridge *Bridge) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
}

// Setup installs a provider built around renderer as the global provider and
// returns its shutdown function.
func Setup(renderer ports.Renderer) func(context.Context) error {
	tp := NewProvider(NewBridge(renderer))
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
