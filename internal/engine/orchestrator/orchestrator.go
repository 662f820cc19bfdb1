// Package orchestrator builds an ordered list of targets, one worker per
// target, and collects one result per target in input order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"go.trai.ch/pack/internal/adapters/telemetry"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options configures a single Run.
type Options struct {
	// Root is the project root that entry points and output dirs resolve against.
	Root string
	// Parallelism bounds the number of targets built at once. Zero means runtime.NumCPU().
	Parallelism int
}

// Orchestrator drives the per-target build pipeline.
type Orchestrator struct {
	resolver     ports.EntryPointResolver
	cleaner      ports.OutputCleaner
	compiler     ports.Compiler
	declarations ports.DeclarationEmitter
	hasher       ports.ArtifactHasher
	executor     ports.Executor
	logger       ports.Logger
	tracer       ports.Tracer
}

// New creates an Orchestrator. A nil declarations emitter disables declaration
// output for every target.
func New(
	resolver ports.EntryPointResolver,
	cleaner ports.OutputCleaner,
	compiler ports.Compiler,
	declarations ports.DeclarationEmitter,
	hasher ports.ArtifactHasher,
	executor ports.Executor,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver:     resolver,
		cleaner:      cleaner,
		compiler:     compiler,
		declarations: declarations,
		hasher:       hasher,
		executor:     executor,
		logger:       logger,
		tracer:       telemetry.NewNoOpTracer(),
	}
}

// WithTracer returns a copy of the orchestrator that reports spans to tracer.
func (o *Orchestrator) WithTracer(tracer ports.Tracer) *Orchestrator {
	c := *o
	c.tracer = tracer
	return &c
}

// Run validates targets and builds each of them.
//
// Validation failures are returned as an error wrapping
// domain.ErrInvalidConfiguration and nothing is written. Otherwise the
// returned slice holds exactly one result per target, at the target's index;
// a failing target never affects the others. Targets that had not finished
// when ctx was cancelled are reported as cancelled.
func (o *Orchestrator) Run(ctx context.Context, targets []domain.Target, opts Options) ([]domain.BuildResult, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	owned := make([]domain.Target, len(targets))
	for i := range targets {
		owned[i] = targets[i].Clone()
	}

	if err := Validate(owned, root); err != nil {
		return nil, err
	}

	names := make([]string, len(owned))
	for i := range owned {
		names[i] = owned[i].Name
	}
	o.tracer.EmitPlan(ctx, names)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]domain.BuildResult, len(owned))
	for i := range owned {
		results[i] = cancelledResult(owned[i].Name, 0)
	}

	var g errgroup.Group
	g.SetLimit(parallelism)

	for i := range owned {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = o.build(ctx, &owned[i], root)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// dirClaim is a directory a target writes to: its output dir or a copy destination.
type dirClaim struct {
	target int
	dir    string
	path   string
}

// Validate checks every target and the cross-target invariants without
// touching the file system. Copy hook destinations count as output dirs.
// All violations are reported together.
func Validate(targets []domain.Target, root string) error {
	if len(targets) == 0 {
		return errors.Join(domain.ErrInvalidConfiguration, domain.ErrNoTargets)
	}

	var errs []error
	names := make(map[string]bool, len(targets))
	var claimed []dirClaim

	for i := range targets {
		t := &targets[i]
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}

		if names[t.Name] {
			errs = append(errs, zerr.With(domain.ErrDuplicateTargetName, "target", t.Name))
		}
		names[t.Name] = true

		var own []dirClaim
		if t.OutDir != "" {
			dir, err := domain.ContainedPath(t.OutDir, root)
			if err != nil {
				errs = append(errs, zerr.With(err, "target", t.Name))
			} else {
				own = append(own, dirClaim{target: i, dir: dir, path: t.OutDir})
			}
		}
		if h, ok := t.OnSuccess.(domain.CopyHook); ok {
			dir, err := domain.ContainedPath(h.To, root)
			if err != nil {
				errs = append(errs, zerr.With(zerr.With(err, "target", t.Name), "copy_to", h.To))
			} else {
				own = append(own, dirClaim{target: i, dir: dir, path: h.To})
			}
		}

		for _, c := range own {
			for _, prev := range claimed {
				if domain.Overlaps(prev.dir, c.dir) {
					errs = append(errs, zerr.With(
						zerr.With(domain.ErrOutputDirCollision, "targets", targets[prev.target].Name+", "+t.Name),
						"out_dir", c.path,
					))
				}
			}
		}
		claimed = append(claimed, own...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{domain.ErrInvalidConfiguration}, errs...)...)
}

// build runs the pipeline for one target. It never returns an error: every
// outcome is recorded in the result.
func (o *Orchestrator) build(ctx context.Context, t *domain.Target, root string) domain.BuildResult {
	start := time.Now()

	if ctx.Err() != nil {
		return cancelledResult(t.Name, 0)
	}

	ctx, span := o.tracer.Start(ctx, t.Name)
	defer span.End()

	span.SetAttribute("pack.format", string(t.Format))
	span.SetAttribute("pack.target", t.Target)
	span.SetAttribute("pack.platform", string(t.Platform))
	span.SetAttribute("pack.out_dir", t.OutDir)

	fail := func(kind domain.FailureKind, err error) domain.BuildResult {
		if ctx.Err() != nil {
			kind = domain.FailureCancelled
			err = zerr.Wrap(ctx.Err(), domain.ErrBuildCancelled.Error())
		}
		span.RecordError(err)
		res := domain.BuildResult{
			Target:      t.Name,
			Status:      domain.StatusFailure,
			Failure:     kind,
			Diagnostics: diagnostics(err),
			Duration:    time.Since(start),
		}
		span.SetAttribute("pack.failure", string(kind))
		return res
	}

	entries, err := o.resolver.ResolveEntryPoints(t.EntryPoints, root)
	if err != nil {
		return fail(domain.FailureEntryPointNotFound, err)
	}

	outDir, err := domain.ContainedPath(t.OutDir, root)
	if err != nil {
		return fail(domain.FailureOutput, err)
	}

	if t.Clean {
		if err := o.cleaner.Clean(outDir, root); err != nil {
			return fail(domain.FailureOutput, err)
		}
	}

	out, err := o.compiler.Compile(ctx, domain.CompileRequest{
		EntryPoints:  entries,
		Format:       t.Format,
		Target:       t.Target,
		Platform:     t.Platform,
		Minify:       t.Minify,
		SourceMap:    t.SourceMap,
		OutDir:       outDir,
		OutExtension: t.OutExtension,
		External:     t.External,
		Define:       t.Define,
		WorkingDir:   root,
	})
	if err != nil {
		return fail(domain.FailureCompilation, err)
	}
	for _, w := range out.Warnings {
		_, _ = fmt.Fprintf(span, "warning: %s\n", w)
	}

	artifacts := slices.Clone(out.Artifacts)
	if t.Declarations && o.declarations != nil {
		decls, err := o.declarations.Emit(ctx, domain.DeclarationRequest{
			EntryPoints: entries,
			OutDir:      outDir,
			Extension:   t.DeclarationExtension(),
			Target:      t.Target,
			WorkingDir:  root,
		})
		if err != nil {
			return fail(domain.FailureCompilation, err)
		}
		artifacts = append(artifacts, decls...)
	}

	digest, err := o.hasher.ComputeDigest(artifacts, root)
	if err != nil {
		return fail(domain.FailureOutput, err)
	}

	res := domain.BuildResult{
		Target:    t.Name,
		Status:    domain.StatusSuccess,
		Warnings:  out.Warnings,
		Artifacts: relativeSorted(artifacts, root),
		Digest:    digest,
	}
	span.SetAttribute("pack.digest", digest)
	span.SetAttribute("pack.artifacts", len(res.Artifacts))

	if t.OnSuccess != nil {
		span.SetAttribute("pack.hook", domain.HookKind(t.OnSuccess))
		res.Duration = time.Since(start)
		if err := o.runHook(ctx, t, res, root, span); err != nil {
			res.HookError = err.Error()
			span.SetAttribute("pack.hook_error", res.HookError)
			o.logger.Error(zerr.With(zerr.Wrap(err, domain.ErrHookFailed.Error()), "target", t.Name))
		}
	}

	res.Duration = time.Since(start)
	return res
}

func cancelledResult(name string, d time.Duration) domain.BuildResult {
	return domain.BuildResult{
		Target:      name,
		Status:      domain.StatusFailure,
		Failure:     domain.FailureCancelled,
		Diagnostics: []string{domain.ErrBuildCancelled.Error()},
		Duration:    d,
	}
}

// diagnostics turns an error into result diagnostics. Compiler and
// declaration failures contribute one entry per reported message.
func diagnostics(err error) []string {
	var de *domain.DiagnosticsError
	if errors.As(err, &de) && len(de.Messages) > 0 {
		return slices.Clone(de.Messages)
	}
	msgs := strings.Split(err.Error(), "\n")
	if meta := metadata(err); meta != "" {
		msgs[0] += " (" + meta + ")"
	}
	return msgs
}

// metadata renders the key/value pairs attached along err's chain, such as
// the entry point that did not resolve. The target name is left out since
// every result already carries it.
func metadata(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		z, ok := e.(*zerr.Error)
		if !ok {
			continue
		}
		md := z.Metadata()
		for _, k := range slices.Sorted(maps.Keys(md)) {
			if k != "target" {
				parts = append(parts, fmt.Sprintf("%s: %v", k, md[k]))
			}
		}
	}
	return strings.Join(parts, ", ")
}

func relativeSorted(paths []string, root string) []string {
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			r = p
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	slices.Sort(rel)
	return slices.Compact(rel)
}
