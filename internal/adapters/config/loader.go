// Package config provides the pack.yaml configuration loader.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const supportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load returns the project for cwd, reading configPath if given or the nearest
// pack.yaml otherwise. Without a configuration file the default targets are used.
func (l *Loader) Load(cwd, configPath string) (*domain.Project, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(absCwd, configPath)
		}
		return l.loadPackfile(filepath.Clean(configPath))
	}

	if found, ok := findConfiguration(absCwd); ok {
		return l.loadPackfile(found)
	}

	l.Logger.Warn("no " + domain.ConfigFileName + " found, using default targets")
	return l.loadDefaults(absCwd)
}

// findConfiguration walks up from dir looking for pack.yaml.
func findConfiguration(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (l *Loader) loadDefaults(root string) (*domain.Project, error) {
	env, err := l.loadEnv(filepath.Join(root, domain.EnvFileName), nil)
	if err != nil {
		return nil, err
	}

	targets := domain.DefaultTargets()
	for i := range targets {
		targets[i].Define = mergeDefines(env, targets[i].Define)
	}
	return &domain.Project{Root: root, Targets: targets}, nil
}

func (l *Loader) loadPackfile(configPath string) (*domain.Project, error) {
	var packfile Packfile
	if err := readAndUnmarshalYAML(configPath, &packfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if packfile.Version != "" && packfile.Version != supportedVersion {
		return nil, zerr.With(domain.ErrUnsupportedConfigVersion, "version", packfile.Version)
	}

	root := resolveRoot(configPath, packfile.Root)

	envFile := packfile.EnvFile
	if envFile == "" {
		envFile = domain.EnvFileName
	}
	if !filepath.IsAbs(envFile) {
		envFile = filepath.Join(root, envFile)
	}
	env, err := l.loadEnv(envFile, packfile.Env)
	if err != nil {
		return nil, err
	}

	if len(packfile.Targets) == 0 {
		return nil, zerr.With(domain.ErrNoTargets, "path", configPath)
	}

	targets := make([]domain.Target, 0, len(packfile.Targets))
	for i, dto := range packfile.Targets {
		if dto == nil {
			return nil, zerr.With(domain.ErrConfigParseFailed, "target_index", i)
		}
		target, err := buildTarget(dto, env)
		if err != nil {
			return nil, zerr.With(err, "target_index", i)
		}
		targets = append(targets, target)
	}

	return &domain.Project{Root: root, ConfigPath: configPath, Targets: targets}, nil
}

// buildTarget converts a TargetDTO into a domain.Target, filling the fields the
// user left out. Value checks beyond parsing happen in the orchestrator's pre-flight.
func buildTarget(dto *TargetDTO, env map[string]string) (domain.Target, error) {
	t := domain.Target{
		Name:         dto.Name,
		EntryPoints:  canonicalizeStrings(dto.Entry),
		OutExtension: dto.OutExtension,
		Declarations: dto.DTS,
		SourceMap:    dto.Sourcemap,
		Clean:        dto.Clean,
		OutDir:       cleanPath(dto.OutDir),
		Target:       strings.ToLower(dto.Target),
		Minify:       dto.Minify,
		External:     dto.External,
		Define:       mergeDefines(env, dto.Define),
	}

	if len(t.EntryPoints) == 0 {
		t.EntryPoints = []string{domain.DefaultEntryPoint}
	}
	if t.Name == "" && t.OutDir != "" {
		t.Name = filepath.Base(t.OutDir)
	}
	if t.Target == "" {
		t.Target = "esnext"
	}

	var err error
	switch {
	case dto.Format != "":
		if t.Format, err = domain.ParseModuleFormat(dto.Format); err != nil {
			return t, zerr.With(err, "target", t.Name)
		}
	case t.OutExtension == domain.ExtCJS:
		t.Format = domain.FormatCommonJS
	default:
		t.Format = domain.FormatESM
	}

	if t.OutExtension == "" {
		t.OutExtension = defaultExtension(t.Format)
	}

	t.Platform = domain.PlatformNode
	if dto.Platform != "" {
		if t.Platform, err = domain.ParsePlatform(dto.Platform); err != nil {
			return t, zerr.With(err, "target", t.Name)
		}
	}

	if t.OnSuccess, err = buildHook(dto); err != nil {
		return t, zerr.With(err, "target", t.Name)
	}

	return t, nil
}

func buildHook(dto *TargetDTO) (domain.Hook, error) {
	switch {
	case len(dto.OnSuccess) > 0 && dto.Copy != nil:
		return nil, domain.ErrConflictingHooks
	case len(dto.OnSuccess) > 0:
		return domain.CommandHook{Command: dto.OnSuccess}, nil
	case dto.Copy != nil:
		msg := dto.Copy.Message
		if msg == "" {
			msg = "Copied " + dto.Copy.From + " to " + dto.Copy.To
		}
		return domain.CopyHook{From: dto.Copy.From, To: dto.Copy.To, Message: msg}, nil
	default:
		return nil, nil
	}
}

func defaultExtension(format domain.ModuleFormat) string {
	if format == domain.FormatCommonJS {
		return domain.ExtCJS
	}
	return domain.ExtMJS
}

// resolveRoot returns the project root: the config file's directory, or the
// configured root relative to it.
func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath comes from discovery or the --config flag
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

// cleanPath normalises a configured path to slash form. Empty stays empty.
func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// canonicalizeStrings cleans each path and drops duplicates, keeping order.
func canonicalizeStrings(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = cleanPath(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
