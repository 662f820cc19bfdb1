package domain

import "context"

// Hook is a side effect that runs after a target built successfully.
// Its failure is reported but never fails the build.
//
// The set of hooks is closed: HookFunc, CommandHook and CopyHook.
type Hook interface {
	hookKind() string
}

// HookFunc is a hook implemented in Go.
type HookFunc func(ctx context.Context, result BuildResult) error

func (HookFunc) hookKind() string { return "func" }

// CommandHook runs an external command in the project root.
type CommandHook struct {
	Command     []string
	Environment map[string]string
}

func (CommandHook) hookKind() string { return "command" }

// CopyHook copies a directory tree and logs Message when done.
// A missing source directory is not an error; the copy is skipped.
type CopyHook struct {
	From    string
	To      string
	Message string
}

func (CopyHook) hookKind() string { return "copy" }

// HookKind returns a short name for the hook type, used in logs and span attributes.
func HookKind(h Hook) string {
	if h == nil {
		return ""
	}
	return h.hookKind()
}
