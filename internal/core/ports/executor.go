package ports

import (
	"context"
	"io"

	"go.trai.ch/pack/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and waits for it to complete.
	//
	// Output is streamed to stdout and stderr as it is produced.
	// It returns an error if the command cannot be started or exits non-zero.
	Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error
}
