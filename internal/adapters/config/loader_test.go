package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/config"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(mockLogger)
}

func TestLoader_Load_FullTarget(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
version: "1"
targets:
  - name: esm
    entry: [src/index.ts]
    format: esm
    outExtension: .mjs
    dts: true
    sourcemap: true
    clean: true
    outDir: build/esm
    target: ESNext
    platform: neutral
    minify: true
    external: [react]
    define:
      __VERSION__: '"1.0.0"'
    copy:
      from: src/assets
      to: dist/assets
      message: Copied assets to dist/assets
  - outDir: build/cjs
    format: commonjs
    target: es2019
    onSuccess: ["node", "scripts/post.js"]
`)

	project, err := newLoader(t).Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, root, project.Root)
	assert.Equal(t, filepath.Join(root, domain.ConfigFileName), project.ConfigPath)
	require.Len(t, project.Targets, 2)

	esm := project.Targets[0]
	assert.Equal(t, "esm", esm.Name)
	assert.Equal(t, []string{"src/index.ts"}, esm.EntryPoints)
	assert.Equal(t, domain.FormatESM, esm.Format)
	assert.Equal(t, domain.ExtMJS, esm.OutExtension)
	assert.True(t, esm.Declarations)
	assert.True(t, esm.SourceMap)
	assert.True(t, esm.Clean)
	assert.True(t, esm.Minify)
	assert.Equal(t, "esnext", esm.Target)
	assert.Equal(t, domain.PlatformNeutral, esm.Platform)
	assert.Equal(t, []string{"react"}, esm.External)
	assert.Equal(t, map[string]string{"__VERSION__": `"1.0.0"`}, esm.Define)
	assert.Equal(t, domain.CopyHook{
		From:    "src/assets",
		To:      "dist/assets",
		Message: "Copied assets to dist/assets",
	}, esm.OnSuccess)
	require.NoError(t, esm.Validate())

	cjs := project.Targets[1]
	assert.Equal(t, "cjs", cjs.Name, "name defaults to the output dir's base name")
	assert.Equal(t, domain.FormatCommonJS, cjs.Format)
	assert.Equal(t, domain.ExtCJS, cjs.OutExtension)
	assert.Equal(t, domain.PlatformNode, cjs.Platform)
	assert.Equal(t, []string{domain.DefaultEntryPoint}, cjs.EntryPoints)
	assert.Equal(t, domain.CommandHook{Command: []string{"node", "scripts/post.js"}}, cjs.OnSuccess)
	require.NoError(t, cjs.Validate())
}

func TestLoader_Load_Discovery(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
targets:
  - outDir: build/js
`)
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	project, err := newLoader(t).Load(nested, "")
	require.NoError(t, err)
	assert.Equal(t, root, project.Root)
	assert.Equal(t, []string{"js"}, project.TargetNames())
}

func TestLoader_Load_ExplicitPathAndRoot(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "configs/release.yaml", `
root: ..
targets:
  - outDir: build/esm
`)

	project, err := newLoader(t).Load(root, "configs/release.yaml")
	require.NoError(t, err)
	assert.Equal(t, root, project.Root)
	assert.Equal(t, filepath.Join(root, "configs", "release.yaml"), project.ConfigPath)
}

func TestLoader_Load_Defaults(t *testing.T) {
	root := t.TempDir()

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn("no pack.yaml found, using default targets")

	project, err := config.NewLoader(mockLogger).Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, root, project.Root)
	assert.Empty(t, project.ConfigPath)
	assert.Equal(t, []string{"esm", "cjs", "js"}, project.TargetNames())
}

func TestLoader_Load_Env(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.EnvFileName, "API_URL=https://example.com\nMODE=dev\n")
	createFile(t, root, domain.ConfigFileName, `
env:
  MODE: production
targets:
  - outDir: build/esm
    define:
      process.env.API_URL: '"http://localhost"'
`)

	project, err := newLoader(t).Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"process.env.API_URL": `"http://localhost"`,
		"process.env.MODE":    `"production"`,
	}, project.Targets[0].Define)
}

func TestLoader_Load_EnvSkipsInvalidKeys(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
env:
  MODE: production
  feature-flag: "on"
  2FA: "off"
targets:
  - outDir: build/esm
`)

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn("ignoring environment variable 2FA: not a valid identifier")
	mockLogger.EXPECT().Warn("ignoring environment variable feature-flag: not a valid identifier")

	project, err := config.NewLoader(mockLogger).Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"process.env.MODE": `"production"`,
	}, project.Targets[0].Define)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "Invalid YAML",
			content:     "targets: [",
			errContains: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:        "Unsupported version",
			content:     "version: \"2\"\ntargets:\n  - outDir: build\n",
			errContains: domain.ErrUnsupportedConfigVersion.Error(),
		},
		{
			name:        "No targets",
			content:     "version: \"1\"\n",
			errContains: domain.ErrNoTargets.Error(),
		},
		{
			name:        "Unknown format",
			content:     "targets:\n  - outDir: build\n    format: umd\n",
			errContains: domain.ErrInvalidModuleFormat.Error(),
		},
		{
			name:        "Unknown platform",
			content:     "targets:\n  - outDir: build\n    platform: deno\n",
			errContains: domain.ErrInvalidPlatform.Error(),
		},
		{
			name: "Two hooks",
			content: "targets:\n  - outDir: build\n    onSuccess: [\"true\"]\n" +
				"    copy: {from: a, to: b}\n",
			errContains: domain.ErrConflictingHooks.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.ConfigFileName, tt.content)

			_, err := newLoader(t).Load(root, "")
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestLoader_Load_MissingExplicitConfig(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir(), "missing.yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}
