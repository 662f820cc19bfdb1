package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals which targets are planned for this run.
	EmitPlan(ctx context.Context, targetNames []string)
}

// Span represents one unit of work, typically the build of one target.
// Writes to the span are forwarded as target output.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Root marks a span that groups a whole run rather than a single target.
	Root bool
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithRoot marks the span as the run's root span.
func WithRoot() SpanOption {
	return func(c *SpanConfig) {
		c.Root = true
	}
}
