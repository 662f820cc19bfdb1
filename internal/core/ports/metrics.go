package ports

import (
	"time"

	"go.trai.ch/pack/internal/core/domain"
)

// Metrics records build measurements.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObserveResult records the outcome and duration of one target.
	ObserveResult(result domain.BuildResult)
	// ObserveRun records the wall time of a whole run.
	ObserveRun(duration time.Duration, failed bool)
	// WriteTextfile writes the current metrics in the Prometheus text format to path.
	WriteTextfile(path string) error
}
