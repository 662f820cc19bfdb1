// Package dts emits TypeScript declaration files by running tsc.
package dts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DeclarationEmitter = (*Emitter)(nil)

var (
	typeScriptExtensions  = []string{".ts", ".tsx", ".mts", ".cts"}
	declarationExtensions = []string{".d.ts", ".d.mts", ".d.cts"}
)

// Emitter implements ports.DeclarationEmitter with tsc.
type Emitter struct {
	executor ports.Executor
	logger   ports.Logger
}

// NewEmitter creates an Emitter that runs tsc through executor.
func NewEmitter(executor ports.Executor, logger ports.Logger) *Emitter {
	return &Emitter{executor: executor, logger: logger}
}

// Emit runs tsc into a scratch directory, then moves every declaration into
// req.OutDir with its suffix replaced by req.Extension. Entry points that are
// not TypeScript are skipped with a warning.
func (e *Emitter) Emit(ctx context.Context, req domain.DeclarationRequest) ([]string, error) {
	var entries []string
	for _, entry := range req.EntryPoints {
		if slices.Contains(typeScriptExtensions, filepath.Ext(entry)) {
			entries = append(entries, entry)
			continue
		}
		e.logger.Warn("skipping declarations for " + relTo(req.WorkingDir, entry) + ": not a TypeScript file")
	}
	if len(entries) == 0 {
		return nil, nil
	}

	scratch, err := os.MkdirTemp("", "pack-dts-*")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrDeclarationsFailed.Error())
	}
	defer os.RemoveAll(scratch) //nolint:errcheck // best effort cleanup

	var out bytes.Buffer
	cmd := &domain.Command{
		Name:       tscPath(req.WorkingDir),
		Args:       tscArgs(req, scratch, entries),
		WorkingDir: req.WorkingDir,
	}
	if err := e.executor.Execute(ctx, cmd, &out, &out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.DiagnosticsError{
			Kind:     domain.ErrDeclarationsFailed,
			Messages: diagnostics(out.String(), err),
		}
	}

	return moveDeclarations(scratch, req.OutDir, req.Extension)
}

// tscPath prefers the project's own compiler over one on PATH.
func tscPath(root string) string {
	local := filepath.Join(root, "node_modules", ".bin", "tsc")
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local
	}
	return "tsc"
}

func tscArgs(req domain.DeclarationRequest, outDir string, entries []string) []string {
	args := []string{
		"--declaration",
		"--emitDeclarationOnly",
		"--skipLibCheck",
		"--pretty", "false",
		"--module", "esnext",
		"--moduleResolution", "bundler",
		"--outDir", outDir,
	}
	if req.Target != "" {
		args = append(args, "--target", req.Target)
	}
	return append(args, entries...)
}

// moveDeclarations relocates every declaration below scratch into outDir,
// preserving relative paths, and returns the new paths sorted.
func moveDeclarations(scratch, outDir, ext string) ([]string, error) {
	var written []string
	err := filepath.WalkDir(scratch, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		base := trimDeclarationExt(path)
		if base == "" {
			return nil
		}
		rel, err := filepath.Rel(scratch, base)
		if err != nil {
			return err
		}
		dest := filepath.Join(outDir, rel+ext)

		data, err := os.ReadFile(path) //nolint:gosec // path is below our scratch dir
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, domain.FilePerm); err != nil { //nolint:gosec // build output is world-readable
			return err
		}
		written = append(written, dest)
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "dir", outDir)
	}

	slices.Sort(written)
	return written, nil
}

// trimDeclarationExt strips a declaration suffix, returning "" for other files.
func trimDeclarationExt(path string) string {
	for _, ext := range declarationExtensions {
		if base, ok := strings.CutSuffix(path, ext); ok {
			return base
		}
	}
	return ""
}

func diagnostics(output string, err error) []string {
	var msgs []string
	for line := range strings.Lines(output) {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, line)
		}
	}
	if len(msgs) == 0 {
		msgs = []string{err.Error()}
	}
	return msgs
}

func relTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
