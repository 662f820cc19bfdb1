// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/pack/internal/core/domain"
)

//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks

// Compiler is the external compilation mechanism invoked once per target.
type Compiler interface {
	// Compile bundles the request's entry points and writes the artifacts to req.OutDir.
	// A returned error wrapping domain.ErrCompilationFailed carries the compiler's diagnostics.
	Compile(ctx context.Context, req domain.CompileRequest) (*domain.CompileOutput, error)
}

// DeclarationEmitter produces type declaration files for a target.
type DeclarationEmitter interface {
	// Emit writes declarations for req.EntryPoints into req.OutDir and returns the written paths.
	Emit(ctx context.Context, req domain.DeclarationRequest) ([]string, error)
}
