// Package esbuild implements ports.Compiler with the esbuild Go API.
package esbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
	"esnext": api.ESNext,
}

var platforms = map[domain.Platform]api.Platform{
	domain.PlatformNeutral: api.PlatformNeutral,
	domain.PlatformNode:    api.PlatformNode,
	domain.PlatformBrowser: api.PlatformBrowser,
}

// Compiler bundles entry points in-process.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile bundles req.EntryPoints and writes the output files into req.OutDir.
// Nothing is written when esbuild reports an error.
func (c *Compiler) Compile(ctx context.Context, req domain.CompileRequest) (*domain.CompileOutput, error) {
	opts, err := buildOptions(req)
	if err != nil {
		return nil, err
	}

	bctx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return nil, &domain.DiagnosticsError{
			Kind:     domain.ErrCompilationFailed,
			Messages: formatMessages(ctxErr.Errors),
		}
	}
	defer bctx.Dispose()

	stop := context.AfterFunc(ctx, bctx.Cancel)
	result := bctx.Rebuild()
	stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(result.Errors) > 0 {
		return nil, &domain.DiagnosticsError{
			Kind:     domain.ErrCompilationFailed,
			Messages: formatMessages(result.Errors),
		}
	}

	artifacts, err := writeOutputFiles(result.OutputFiles)
	if err != nil {
		return nil, err
	}

	return &domain.CompileOutput{
		Artifacts: artifacts,
		Warnings:  formatMessages(result.Warnings),
	}, nil
}

func buildOptions(req domain.CompileRequest) (api.BuildOptions, error) {
	target, ok := targets[strings.ToLower(req.Target)]
	if !ok {
		return api.BuildOptions{}, zerr.With(domain.ErrInvalidTargetEnvironment, "target", req.Target)
	}
	platform, ok := platforms[req.Platform]
	if !ok {
		return api.BuildOptions{}, zerr.With(domain.ErrInvalidPlatform, "platform", string(req.Platform))
	}

	format := api.FormatESModule
	if req.Format == domain.FormatCommonJS {
		format = api.FormatCommonJS
	}

	sourcemap := api.SourceMapNone
	if req.SourceMap {
		sourcemap = api.SourceMapLinked
	}

	return api.BuildOptions{
		AbsWorkingDir:     req.WorkingDir,
		EntryPoints:       req.EntryPoints,
		Bundle:            true,
		Packages:          api.PackagesExternal,
		External:          req.External,
		Outdir:            req.OutDir,
		OutExtension:      map[string]string{".js": req.OutExtension},
		Format:            format,
		Platform:          platform,
		Target:            target,
		MinifyWhitespace:  req.Minify,
		MinifyIdentifiers: req.Minify,
		MinifySyntax:      req.Minify,
		Sourcemap:         sourcemap,
		Define:            req.Define,
		Write:             false,
		LogLevel:          api.LogLevelSilent,
	}, nil
}

// writeOutputFiles writes files in path order and returns their paths.
func writeOutputFiles(files []api.OutputFile) ([]string, error) {
	slices.SortFunc(files, func(a, b api.OutputFile) int {
		return strings.Compare(a.Path, b.Path)
	})

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.Path), domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", f.Path)
		}
		if err := os.WriteFile(f.Path, f.Contents, domain.FilePerm); err != nil { //nolint:gosec // build output is world-readable
			return nil, zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", f.Path)
		}
		paths = append(paths, f.Path)
	}
	return paths, nil
}

// formatMessages renders esbuild messages as "file:line:col: text".
func formatMessages(msgs []api.Message) []string {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		text := m.Text
		if m.PluginName != "" {
			text = "[plugin " + m.PluginName + "] " + text
		}
		if loc := m.Location; loc != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, text)
		}
		out = append(out, text)
	}
	return out
}
