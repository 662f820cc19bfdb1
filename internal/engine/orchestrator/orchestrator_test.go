package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fsadapter "go.trai.ch/pack/internal/adapters/fs"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/pack/internal/core/ports/mocks"
	"go.trai.ch/pack/internal/engine/orchestrator"
	"go.uber.org/mock/gomock"
)

type harness struct {
	root     string
	compiler *mocks.MockCompiler
	logger   *mocks.MockLogger
	executor *mocks.MockExecutor
}

// newHarness creates a project with src/index.ts and an orchestrator backed by
// the real file system adapters and a mocked compiler.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "index.ts"), "export const answer = 42;\n")

	return &harness{
		root:     root,
		compiler: mocks.NewMockCompiler(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
	}
}

func (h *harness) orchestrator(declarations ports.DeclarationEmitter) *orchestrator.Orchestrator {
	return orchestrator.New(
		fsadapter.NewResolver(),
		fsadapter.NewCleaner(),
		h.compiler,
		declarations,
		fsadapter.NewHasher(fsadapter.NewWalker()),
		h.executor,
		h.logger,
	)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func target(name string) domain.Target {
	return domain.Target{
		Name:         name,
		EntryPoints:  []string{"src/index.ts"},
		Format:       domain.FormatESM,
		OutExtension: domain.ExtMJS,
		OutDir:       "build/" + name,
		Target:       "esnext",
		Platform:     domain.PlatformNeutral,
	}
}

// writeOutputs stands in for the compiler: one file per entry point.
func writeOutputs(_ context.Context, req domain.CompileRequest) (*domain.CompileOutput, error) {
	if err := os.MkdirAll(req.OutDir, 0o750); err != nil {
		return nil, err
	}
	out := &domain.CompileOutput{}
	for _, entry := range req.EntryPoints {
		name := strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry)) + req.OutExtension
		path := filepath.Join(req.OutDir, name)
		if err := os.WriteFile(path, []byte(string(req.Format)+":"+req.Target), 0o600); err != nil {
			return nil, err
		}
		out.Artifacts = append(out.Artifacts, path)
	}
	return out, nil
}

func TestValidate(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name     string
		targets  func() []domain.Target
		contains []string
	}{
		{
			name:     "Empty list",
			targets:  func() []domain.Target { return nil },
			contains: []string{domain.ErrNoTargets.Error()},
		},
		{
			name: "Same output dir",
			targets: func() []domain.Target {
				a, b := target("a"), target("b")
				b.OutDir = a.OutDir
				return []domain.Target{a, b}
			},
			contains: []string{domain.ErrOutputDirCollision.Error()},
		},
		{
			name: "Nested output dir",
			targets: func() []domain.Target {
				a, b := target("a"), target("b")
				a.OutDir = "build"
				return []domain.Target{a, b}
			},
			contains: []string{domain.ErrOutputDirCollision.Error()},
		},
		{
			name: "Output dir outside root",
			targets: func() []domain.Target {
				a := target("a")
				a.OutDir = "../elsewhere"
				return []domain.Target{a}
			},
			contains: []string{domain.ErrOutputDirOutsideRoot.Error()},
		},
		{
			name: "Copy destination inside another output dir",
			targets: func() []domain.Target {
				a, b := target("a"), target("b")
				a.OnSuccess = domain.CopyHook{From: "src/assets", To: "build/b/assets"}
				return []domain.Target{a, b}
			},
			contains: []string{domain.ErrOutputDirCollision.Error()},
		},
		{
			name: "Output dir inside an earlier copy destination",
			targets: func() []domain.Target {
				a, b := target("a"), target("b")
				a.OnSuccess = domain.CopyHook{From: "src/assets", To: "build"}
				return []domain.Target{a, b}
			},
			contains: []string{domain.ErrOutputDirCollision.Error()},
		},
		{
			name: "Copy destination outside root",
			targets: func() []domain.Target {
				a := target("a")
				a.OnSuccess = domain.CopyHook{From: "src/assets", To: "../assets"}
				return []domain.Target{a}
			},
			contains: []string{domain.ErrOutputDirOutsideRoot.Error()},
		},
		{
			name: "Duplicate names",
			targets: func() []domain.Target {
				a, b := target("a"), target("a")
				b.OutDir = "build/other"
				return []domain.Target{a, b}
			},
			contains: []string{domain.ErrDuplicateTargetName.Error()},
		},
		{
			name: "Every violation is reported",
			targets: func() []domain.Target {
				a, b, c := target("a"), target("b"), target("c")
				a.Format = "umd"
				b.EntryPoints = nil
				c.OutDir = a.OutDir
				return []domain.Target{a, b, c}
			},
			contains: []string{
				domain.ErrInvalidModuleFormat.Error(),
				domain.ErrMissingEntryPoints.Error(),
				domain.ErrOutputDirCollision.Error(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := orchestrator.Validate(tt.targets(), root)
			require.Error(t, err)
			require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
			for _, c := range tt.contains {
				assert.ErrorContains(t, err, c)
			}
		})
	}

	require.NoError(t, orchestrator.Validate([]domain.Target{target("a"), target("b")}, root))

	withCopy := target("a")
	withCopy.OnSuccess = domain.CopyHook{From: "src/assets", To: "build/a/assets"}
	require.NoError(t, orchestrator.Validate([]domain.Target{withCopy, target("b")}, root), "a target may copy into its own output dir")
}

func TestRun_CollisionWritesNothing(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(nil)

	a, b := target("a"), target("b")
	a.Clean = true
	b.OutDir = a.OutDir
	writeFile(t, filepath.Join(h.root, "build", "a", "keep.txt"), "prior output")

	results, err := o.Run(t.Context(), []domain.Target{a, b}, orchestrator.Options{Root: h.root})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.ErrorContains(t, err, domain.ErrOutputDirCollision.Error())
	assert.Nil(t, results)

	// The clean step never ran.
	assert.FileExists(t, filepath.Join(h.root, "build", "a", "keep.txt"))
}

func TestRun_ResultsFollowInputOrder(t *testing.T) {
	h := newHarness(t)

	var mu sync.Mutex
	var finished []string
	release := make(chan struct{})

	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req domain.CompileRequest) (*domain.CompileOutput, error) {
			name := filepath.Base(req.OutDir)
			if name == "a" {
				<-release
			}
			out, err := writeOutputs(ctx, req)

			mu.Lock()
			finished = append(finished, name)
			mu.Unlock()
			if name == "c" {
				close(release)
			}
			return out, err
		}).Times(3)

	o := h.orchestrator(nil)
	targets := []domain.Target{target("a"), target("b"), target("c")}

	results, err := o.Run(t.Context(), targets, orchestrator.Options{Root: h.root, Parallelism: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, results[i].Target)
		assert.True(t, results[i].Succeeded(), name)
		assert.Equal(t, []string{"build/" + name + "/index.mjs"}, results[i].Artifacts)
		assert.Len(t, results[i].Digest, 16)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "a", finished[len(finished)-1])
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	h := newHarness(t)

	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req domain.CompileRequest) (*domain.CompileOutput, error) {
			if filepath.Base(req.OutDir) == "broken" {
				return nil, &domain.DiagnosticsError{
					Kind:     domain.ErrCompilationFailed,
					Messages: []string{`src/index.ts:1:8: Expected ";" but found "x"`},
				}
			}
			return writeOutputs(ctx, req)
		}).Times(2)

	missing := target("missing")
	missing.EntryPoints = []string{"src/nope"}

	o := h.orchestrator(nil)
	results, err := o.Run(t.Context(),
		[]domain.Target{target("ok"), missing, target("broken")},
		orchestrator.Options{Root: h.root, Parallelism: 1})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Succeeded())

	assert.Equal(t, domain.StatusFailure, results[1].Status)
	assert.Equal(t, domain.FailureEntryPointNotFound, results[1].Failure)
	assert.Equal(t, []string{"entry point not found (entry: src/nope)"}, results[1].Diagnostics)

	assert.Equal(t, domain.StatusFailure, results[2].Status)
	assert.Equal(t, domain.FailureCompilation, results[2].Failure)
	assert.Equal(t, []string{`src/index.ts:1:8: Expected ";" but found "x"`}, results[2].Diagnostics)

	assert.True(t, domain.AnyFailed(results))
	assert.NoDirExists(t, filepath.Join(h.root, "build", "missing"))
}

func TestRun_CleanRemovesStaleOutput(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs).Times(2)

	cleaned, kept := target("cleaned"), target("kept")
	cleaned.Clean = true
	writeFile(t, filepath.Join(h.root, "build", "cleaned", "stale.mjs"), "old")
	writeFile(t, filepath.Join(h.root, "build", "kept", "stale.mjs"), "old")

	results, err := h.orchestrator(nil).Run(t.Context(),
		[]domain.Target{cleaned, kept}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(h.root, "build", "cleaned", "stale.mjs"))
	assert.FileExists(t, filepath.Join(h.root, "build", "kept", "stale.mjs"))
	assert.Equal(t, []string{"build/cleaned/index.mjs"}, results[0].Artifacts)
}

func TestRun_Declarations(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs)

	emitter := mocks.NewMockDeclarationEmitter(gomock.NewController(t))
	emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.DeclarationRequest) ([]string, error) {
			assert.Equal(t, ".d.cts", req.Extension)
			assert.Equal(t, []string{filepath.Join(h.root, "src", "index.ts")}, req.EntryPoints)
			path := filepath.Join(req.OutDir, "index"+req.Extension)
			writeFile(t, path, "export declare const answer = 42;\n")
			return []string{path}, nil
		})

	tg := target("cjs")
	tg.Format = domain.FormatCommonJS
	tg.OutExtension = domain.ExtCJS
	tg.Declarations = true

	results, err := h.orchestrator(emitter).Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)
	require.True(t, results[0].Succeeded())
	assert.Equal(t, []string{"build/cjs/index.cjs", "build/cjs/index.d.cts"}, results[0].Artifacts)
}

func TestRun_DeclarationFailure(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs)

	emitter := mocks.NewMockDeclarationEmitter(gomock.NewController(t))
	emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil, &domain.DiagnosticsError{
		Kind:     domain.ErrDeclarationsFailed,
		Messages: []string{"src/index.ts(1,14): error TS2322"},
	})

	tg := target("esm")
	tg.Declarations = true

	results, err := h.orchestrator(emitter).Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)
	assert.Equal(t, domain.FailureCompilation, results[0].Failure)
	assert.Equal(t, []string{"src/index.ts(1,14): error TS2322"}, results[0].Diagnostics)
}

func TestRun_HookFailureDoesNotFailTarget(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs)
	h.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorContains(t, err, domain.ErrHookFailed.Error())
	})

	var seen domain.BuildResult
	tg := target("esm")
	tg.OnSuccess = domain.HookFunc(func(_ context.Context, res domain.BuildResult) error {
		seen = res
		return errors.New("upload refused")
	})

	results, err := h.orchestrator(nil).Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)

	assert.True(t, results[0].Succeeded())
	assert.Equal(t, "upload refused", results[0].HookError)
	assert.Equal(t, results[0].Digest, seen.Digest)
	assert.False(t, domain.AnyFailed(results))
}

func TestRun_HookPanicDoesNotFailTarget(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs).Times(2)
	h.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorContains(t, err, domain.ErrHookFailed.Error())
		assert.ErrorContains(t, err, "boom")
	})

	a := target("a")
	a.OnSuccess = domain.HookFunc(func(context.Context, domain.BuildResult) error {
		panic("boom")
	})
	b := target("b")

	results, err := h.orchestrator(nil).Run(t.Context(), []domain.Target{a, b}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Succeeded())
	assert.Contains(t, results[0].HookError, "hook panicked: boom")
	assert.True(t, results[1].Succeeded())
	assert.Empty(t, results[1].HookError)
}

func TestRun_HookSkippedOnFailure(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(nil, &domain.DiagnosticsError{Kind: domain.ErrCompilationFailed})

	called := false
	tg := target("esm")
	tg.OnSuccess = domain.HookFunc(func(context.Context, domain.BuildResult) error {
		called = true
		return nil
	})

	results, err := h.orchestrator(nil).Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)
	assert.False(t, results[0].Succeeded())
	assert.Equal(t, []string{domain.ErrCompilationFailed.Error()}, results[0].Diagnostics)
	assert.False(t, called)
}

func TestRun_CommandHook(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs)
	h.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd *domain.Command, _, _ io.Writer) error {
			assert.Equal(t, "node", cmd.Name)
			assert.Equal(t, []string{"scripts/post.js"}, cmd.Args)
			assert.Equal(t, map[string]string{"STAGE": "esm"}, cmd.Environment)
			assert.Equal(t, h.root, cmd.WorkingDir)
			return nil
		})

	tg := target("esm")
	tg.OnSuccess = domain.CommandHook{
		Command:     []string{"node", "scripts/post.js"},
		Environment: map[string]string{"STAGE": "esm"},
	}

	results, err := h.orchestrator(nil).Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)
	assert.True(t, results[0].Succeeded())
	assert.Empty(t, results[0].HookError)
}

func TestRun_CopyHook(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs).Times(2)
	h.logger.EXPECT().Info("Copied assets to dist/assets").Times(2)

	writeFile(t, filepath.Join(h.root, "src", "assets", "icons", "logo.svg"), "<svg/>")

	tg := target("esm")
	tg.OnSuccess = domain.CopyHook{From: "src/assets", To: "dist/assets", Message: "Copied assets to dist/assets"}

	o := h.orchestrator(nil)
	for range 2 {
		results, err := o.Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
		require.NoError(t, err)
		assert.Empty(t, results[0].HookError)
	}

	data, err := os.ReadFile(filepath.Join(h.root, "dist", "assets", "icons", "logo.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestRun_CopyHookMissingSource(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(writeOutputs)

	tg := target("esm")
	tg.OnSuccess = domain.CopyHook{From: "src/assets", To: "dist/assets", Message: "Copied assets to dist/assets"}

	results, err := h.orchestrator(nil).Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)
	assert.True(t, results[0].Succeeded())
	assert.Empty(t, results[0].HookError)
	assert.NoDirExists(t, filepath.Join(h.root, "dist"))
}

func TestRun_AlreadyCancelled(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	results, err := h.orchestrator(nil).Run(ctx, []domain.Target{target("a"), target("b")}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for i, name := range []string{"a", "b"} {
		assert.Equal(t, name, results[i].Target)
		assert.Equal(t, domain.FailureCancelled, results[i].Failure)
	}
}

func TestRun_CancelledMidRun(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.CompileRequest) (*domain.CompileOutput, error) {
			cancel()
			return nil, ctx.Err()
		})

	results, err := h.orchestrator(nil).Run(ctx, []domain.Target{target("a"), target("b")},
		orchestrator.Options{Root: h.root, Parallelism: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.FailureCancelled, results[0].Failure)
	assert.Equal(t, domain.FailureCancelled, results[1].Failure)
}

func TestRun_DoesNotMutateTargets(t *testing.T) {
	h := newHarness(t)
	h.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req domain.CompileRequest) (*domain.CompileOutput, error) {
			req.Define["DEBUG"] = "true"
			req.External[0] = "vue"
			return writeOutputs(ctx, req)
		})

	tg := target("esm")
	tg.Define = map[string]string{"DEBUG": "false"}
	tg.External = []string{"react"}

	_, err := h.orchestrator(nil).Run(t.Context(), []domain.Target{tg}, orchestrator.Options{Root: h.root})
	require.NoError(t, err)

	assert.Equal(t, "false", tg.Define["DEBUG"])
	assert.Equal(t, "react", tg.External[0])
}
