package domain

import (
	"strings"
	"time"
)

// Status is the outcome of building one target.
type Status string

const (
	// StatusSuccess indicates the target built and all artifacts were written.
	StatusSuccess Status = "success"
	// StatusFailure indicates the target did not build.
	StatusFailure Status = "failure"
)

// FailureKind classifies why a target failed.
type FailureKind string

const (
	// FailureNone is set on successful results.
	FailureNone FailureKind = ""
	// FailureEntryPointNotFound means an entry point did not resolve to a file.
	FailureEntryPointNotFound FailureKind = "entry_point_not_found"
	// FailureCompilation means the compiler or declaration emitter reported errors.
	FailureCompilation FailureKind = "compilation_error"
	// FailureOutput means the output directory could not be cleaned or the artifacts could not be read back.
	FailureOutput FailureKind = "output_error"
	// FailureCancelled means the run was cancelled before the target finished.
	FailureCancelled FailureKind = "cancelled"
)

// BuildResult records the outcome of one target. Results are returned in the
// same order as the targets they describe.
type BuildResult struct {
	Target      string        `json:"target"`
	Status      Status        `json:"status"`
	Failure     FailureKind   `json:"failure,omitzero"`
	Diagnostics []string      `json:"diagnostics,omitzero"`
	Warnings    []string      `json:"warnings,omitzero"`
	Artifacts   []string      `json:"artifacts,omitzero"`
	Digest      string        `json:"digest,omitzero"`
	HookError   string        `json:"hook_error,omitzero"`
	Duration    time.Duration `json:"duration"`
}

// Succeeded reports whether the target built.
func (r *BuildResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// AnyFailed reports whether at least one result is a failure.
func AnyFailed(results []BuildResult) bool {
	for i := range results {
		if !results[i].Succeeded() {
			return true
		}
	}
	return false
}

// CompileRequest carries the parameters handed to the external compiler.
// EntryPoints are resolved file paths, OutDir is absolute.
type CompileRequest struct {
	EntryPoints  []string
	Format       ModuleFormat
	Target       string
	Platform     Platform
	Minify       bool
	SourceMap    bool
	OutDir       string
	OutExtension string
	External     []string
	Define       map[string]string
	WorkingDir   string
}

// CompileOutput is what the compiler produced for one request.
// Artifacts are absolute paths of written files.
type CompileOutput struct {
	Artifacts []string
	Warnings  []string
}

// DeclarationRequest carries the parameters handed to the declaration emitter.
type DeclarationRequest struct {
	EntryPoints []string
	OutDir      string
	Extension   string
	Target      string
	WorkingDir  string
}

// DiagnosticsError carries the messages an external tool reported for a failed step.
// It unwraps to Kind, so errors.Is(err, ErrCompilationFailed) holds for compiler failures.
type DiagnosticsError struct {
	Kind     error
	Messages []string
}

func (e *DiagnosticsError) Error() string {
	if len(e.Messages) == 0 {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ":\n" + strings.Join(e.Messages, "\n")
}

func (e *DiagnosticsError) Unwrap() error {
	return e.Kind
}
