// Package app implements the application layer for pack.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/pack/internal/adapters/linear"
	"go.trai.ch/pack/internal/adapters/telemetry"
	"go.trai.ch/pack/internal/adapters/watcher"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	orchestrator *orchestrator.Orchestrator
	cleaner      ports.OutputCleaner
	metrics      ports.Metrics
	watcher      ports.Watcher
	logger       ports.Logger

	stdout   io.Writer
	stderr   io.Writer
	debounce time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	orch *orchestrator.Orchestrator,
	cleaner ports.OutputCleaner,
	metrics ports.Metrics,
	w ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		orchestrator: orch,
		cleaner:      cleaner,
		metrics:      metrics,
		watcher:      w,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithOutput redirects build progress and the summary. Used by tests.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithDebounceWindow sets how long watch mode waits for changes to settle.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounce = d
	return a
}

// RunOptions configuration for the Run and Watch methods.
type RunOptions struct {
	// ConfigPath overrides configuration discovery.
	ConfigPath string
	// Jobs bounds how many targets build at once. Zero means one per CPU.
	Jobs int
	// MetricsFile, when set, receives the run's metrics in the Prometheus text format.
	MetricsFile string
	// JSON switches logs and the summary to JSON.
	JSON bool
}

// Run builds the named targets, or every target when names is empty.
// It returns domain.ErrBuildFailed when any target failed; the summary has
// already been printed by then.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	a.configureLogger(opts)

	project, targets, err := a.load(targetNames, opts.ConfigPath)
	if err != nil {
		return err
	}

	results, err := a.build(ctx, project, targets, opts)
	if err != nil {
		return err
	}

	if domain.AnyFailed(results) {
		return domain.ErrBuildFailed
	}
	return nil
}

// Watch builds once and then rebuilds whenever a file below the project root
// changes, until ctx is cancelled. Output directories are not watched.
func (a *App) Watch(ctx context.Context, targetNames []string, opts RunOptions) error {
	a.configureLogger(opts)

	project, targets, err := a.load(targetNames, opts.ConfigPath)
	if err != nil {
		return err
	}

	if _, err := a.build(ctx, project, targets, opts); err != nil {
		return err
	}

	if err := a.watcher.Start(ctx, project.Root, watchIgnores(project.Root, targets)); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	trigger := make(chan []ports.WatchEvent, 1)
	debouncer := watcher.NewDebouncer(a.debounce, func(changes []ports.WatchEvent) {
		select {
		case trigger <- changes:
		default:
			// A rebuild is already pending and will pick these changes up.
		}
	})

	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event)
		}
	}()

	a.logger.Info("watching " + project.Root + " for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case changes := <-trigger:
			a.logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding", len(changes)))
			if _, err := a.build(ctx, project, targets, opts); err != nil {
				a.logger.Error(err)
			}
		}
	}
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
}

// Clean removes every target's output directory and every copy hook destination.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	project, err := a.configLoader.Load(".", opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if err := orchestrator.Validate(project.Targets, project.Root); err != nil {
		return err
	}

	var errs error
	remove := func(dir string) {
		a.logger.Info("removing " + dir)
		if err := a.cleaner.Clean(dir, project.Root); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	for i := range project.Targets {
		t := &project.Targets[i]
		remove(t.OutDir)
		if h, ok := t.OnSuccess.(domain.CopyHook); ok {
			remove(h.To)
		}
	}
	return errs
}

func (a *App) load(targetNames []string, configPath string) (*domain.Project, []domain.Target, error) {
	project, err := a.configLoader.Load(".", configPath)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	targets, err := project.Select(targetNames)
	if err != nil {
		return nil, nil, err
	}
	return project, targets, nil
}

// build runs one build of targets with fresh progress output and records metrics.
func (a *App) build(
	ctx context.Context,
	project *domain.Project,
	targets []domain.Target,
	opts RunOptions,
) ([]domain.BuildResult, error) {
	renderer := linear.NewRenderer(a.stdout, a.stderr).WithJSONSummary(opts.JSON)

	shutdown := telemetry.Setup(renderer)
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	tracer := telemetry.NewOTelTracer("pack").WithRenderer(renderer)

	runCtx, span := tracer.Start(ctx, "build", ports.WithRoot())
	span.SetAttribute("pack.run_id", uuid.NewString())
	if project.ConfigPath != "" {
		span.SetAttribute("pack.config", project.ConfigPath)
	}

	start := time.Now()
	results, err := a.orchestrator.WithTracer(tracer).Run(runCtx, targets, orchestrator.Options{
		Root:        project.Root,
		Parallelism: opts.Jobs,
	})
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}
	span.End()

	_ = renderer.Flush()
	renderer.OnSummary(results)

	for i := range results {
		a.metrics.ObserveResult(results[i])
	}
	a.metrics.ObserveRun(time.Since(start), domain.AnyFailed(results))

	if opts.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(opts.MetricsFile); err != nil {
			a.logger.Error(err)
		}
	}

	return results, nil
}

// jsonLogger is implemented by loggers that can switch to JSON output.
type jsonLogger interface {
	SetJSON(enable bool)
}

func (a *App) configureLogger(opts RunOptions) {
	if l, ok := a.logger.(jsonLogger); ok {
		l.SetJSON(opts.JSON)
	}
}

// watchIgnores lists the root-relative directories the build writes to.
func watchIgnores(root string, targets []domain.Target) []string {
	var ignores []string
	add := func(dir string) {
		abs, err := domain.ContainedPath(dir, root)
		if err != nil {
			return
		}
		if rel, err := filepath.Rel(root, abs); err == nil {
			ignores = append(ignores, filepath.ToSlash(rel))
		}
	}

	for i := range targets {
		add(targets[i].OutDir)
		if h, ok := targets[i].OnSuccess.(domain.CopyHook); ok {
			add(h.To)
		}
	}
	return ignores
}
