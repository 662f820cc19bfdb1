package ports

import (
	"time"

	"go.trai.ch/pack/internal/core/domain"
)

// Renderer is the abstraction for build progress output.
// It decouples telemetry collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called once before any target starts.
	// targets: target names in configuration order
	OnPlanEmit(targets []string)

	// OnTargetStart is called when a target begins building.
	// spanID: unique identifier for this build
	// name: the target name
	OnTargetStart(spanID, name string, startTime time.Time)

	// OnTargetLog is called when a target emits output (compiler warnings, hook output).
	// data may contain partial lines.
	OnTargetLog(spanID string, data []byte)

	// OnTargetComplete is called when a target finishes.
	// err is nil on success.
	OnTargetComplete(spanID string, endTime time.Time, err error)

	// OnSummary is called once after every target has finished.
	OnSummary(results []domain.BuildResult)

	// Flush writes any buffered output.
	Flush() error
}
