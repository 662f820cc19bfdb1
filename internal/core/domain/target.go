package domain

import (
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ModuleFormat is the module-loading convention of the emitted code.
type ModuleFormat string

const (
	// FormatESM emits ECMAScript modules.
	FormatESM ModuleFormat = "esm"
	// FormatCommonJS emits CommonJS modules.
	FormatCommonJS ModuleFormat = "cjs"
)

// ParseModuleFormat converts a configuration value into a ModuleFormat.
// "commonjs" is accepted as an alias for "cjs".
func ParseModuleFormat(s string) (ModuleFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "esm", "module":
		return FormatESM, nil
	case "cjs", "commonjs":
		return FormatCommonJS, nil
	default:
		return "", zerr.With(ErrInvalidModuleFormat, "format", s)
	}
}

// Platform is the runtime environment assumed when resolving built-in modules.
type Platform string

const (
	// PlatformNeutral assumes neither node nor browser built-ins.
	PlatformNeutral Platform = "neutral"
	// PlatformNode assumes node built-ins are available.
	PlatformNode Platform = "node"
	// PlatformBrowser assumes a browser runtime.
	PlatformBrowser Platform = "browser"
)

// ParsePlatform converts a configuration value into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformNeutral, PlatformNode, PlatformBrowser:
		return p, nil
	default:
		return "", zerr.With(ErrInvalidPlatform, "platform", s)
	}
}

// Output extensions accepted for compiled code.
const (
	ExtJS  = ".js"
	ExtMJS = ".mjs"
	ExtCJS = ".cjs"
)

// TargetEnvironments lists the accepted language levels in ascending order.
var TargetEnvironments = []string{
	"es2015", "es2016", "es2017", "es2018", "es2019", "es2020",
	"es2021", "es2022", "es2023", "es2024", "esnext",
}

var validTargetNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Target describes one build output: which entry points to compile, in which
// module format, for which environment, and where to write the result.
// A Target is treated as immutable once handed to the orchestrator.
type Target struct {
	Name         string
	EntryPoints  []string
	Format       ModuleFormat
	OutExtension string
	Declarations bool
	SourceMap    bool
	Clean        bool
	OutDir       string
	Target       string
	Platform     Platform
	Minify       bool
	External     []string
	Define       map[string]string
	OnSuccess    Hook
}

// Clone returns a deep copy of the target so callers cannot mutate it mid-run.
func (t Target) Clone() Target {
	c := t
	c.EntryPoints = slices.Clone(t.EntryPoints)
	c.External = slices.Clone(t.External)
	if t.Define != nil {
		c.Define = make(map[string]string, len(t.Define))
		for k, v := range t.Define {
			c.Define[k] = v
		}
	}
	return c
}

// DeclarationExtension returns the declaration suffix that matches OutExtension.
func (t *Target) DeclarationExtension() string {
	switch t.OutExtension {
	case ExtMJS:
		return ".d.mts"
	case ExtCJS:
		return ".d.cts"
	default:
		return ".d.ts"
	}
}

// Validate checks the fields of a single target.
// Cross-target invariants such as output directory collisions are checked by the orchestrator.
func (t *Target) Validate() error {
	var err error
	switch {
	case t.Name == "":
		err = zerr.With(ErrInvalidTargetName, "name", t.Name)
	case !validTargetNameRegex.MatchString(t.Name):
		err = zerr.With(ErrInvalidTargetName, "name", t.Name)
	case len(t.EntryPoints) == 0 || slices.Contains(t.EntryPoints, ""):
		err = ErrMissingEntryPoints
	case t.OutDir == "":
		err = ErrMissingOutputDir
	case t.Format != FormatESM && t.Format != FormatCommonJS:
		err = zerr.With(ErrInvalidModuleFormat, "format", string(t.Format))
	case t.Platform != PlatformNeutral && t.Platform != PlatformNode && t.Platform != PlatformBrowser:
		err = zerr.With(ErrInvalidPlatform, "platform", string(t.Platform))
	case t.OutExtension != ExtJS && t.OutExtension != ExtMJS && t.OutExtension != ExtCJS:
		err = zerr.With(ErrInvalidOutExtension, "extension", t.OutExtension)
	case !slices.Contains(TargetEnvironments, strings.ToLower(t.Target)):
		err = zerr.With(ErrInvalidTargetEnvironment, "target", t.Target)
	}
	if err != nil {
		return zerr.With(err, "target", t.Name)
	}
	return nil
}
