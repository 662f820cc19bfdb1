package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidConfiguration is returned when pre-flight validation rejects the target list.
	// No build is started and nothing is written when this error is returned.
	ErrInvalidConfiguration = zerr.New("invalid build configuration")

	// ErrNoTargets is returned when the target list is empty.
	ErrNoTargets = zerr.New("no build targets defined")

	// ErrTargetNotFound is returned when a requested target name is not part of the configuration.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrDuplicateTargetName is returned when two targets share the same name.
	ErrDuplicateTargetName = zerr.New("duplicate target name")

	// ErrInvalidTargetName is returned when a target name contains invalid characters.
	ErrInvalidTargetName = zerr.New("target name can only contain alphanumeric characters, dots, hyphens and underscores")

	// ErrMissingEntryPoints is returned when a target declares no entry points.
	ErrMissingEntryPoints = zerr.New("target has no entry points")

	// ErrMissingOutputDir is returned when a target declares no output directory.
	ErrMissingOutputDir = zerr.New("target has no output directory")

	// ErrInvalidModuleFormat is returned when a module format is not one of esm or cjs.
	ErrInvalidModuleFormat = zerr.New("invalid module format, expected 'esm' or 'cjs'")

	// ErrInvalidPlatform is returned when a platform is not one of neutral, node or browser.
	ErrInvalidPlatform = zerr.New("invalid platform, expected 'neutral', 'node' or 'browser'")

	// ErrInvalidOutExtension is returned when an output extension is not one of .js, .mjs or .cjs.
	ErrInvalidOutExtension = zerr.New("invalid output extension, expected '.js', '.mjs' or '.cjs'")

	// ErrInvalidTargetEnvironment is returned when a target environment is not a known language level.
	ErrInvalidTargetEnvironment = zerr.New("invalid target environment, expected 'esnext' or 'es2015' through 'es2024'")

	// ErrOutputDirCollision is returned when two targets write to the same or nested output directories.
	ErrOutputDirCollision = zerr.New("output directory collision")

	// ErrOutputDirOutsideRoot is returned when an output directory is outside the project root.
	ErrOutputDirOutsideRoot = zerr.New("output directory is outside project root")

	// ErrEntryPointNotFound is returned when an entry point does not resolve to a readable file.
	ErrEntryPointNotFound = zerr.New("entry point not found")

	// ErrCompilationFailed is returned when the compiler reports errors for a target.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrDeclarationsFailed is returned when declaration emission fails for a target.
	ErrDeclarationsFailed = zerr.New("declaration emission failed")

	// ErrHookFailed is returned when an on-success hook fails. It never fails the build.
	ErrHookFailed = zerr.New("on-success hook failed")

	// ErrBuildFailed is returned when at least one target failed to build.
	ErrBuildFailed = zerr.New("build failed")

	// ErrBuildCancelled is recorded for targets that did not finish before cancellation.
	ErrBuildCancelled = zerr.New("build cancelled")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrFailedToCleanOutput is returned when removing an output directory fails.
	ErrFailedToCleanOutput = zerr.New("failed to clean output directory")

	// ErrArtifactWriteFailed is returned when a compiled artifact cannot be written.
	ErrArtifactWriteFailed = zerr.New("failed to write artifact")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrWriteHashFailed is returned when writing the hash to the digest fails.
	ErrWriteHashFailed = zerr.New("failed to write hash to digest")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrEnvFileReadFailed is returned when the .env file exists but cannot be parsed.
	ErrEnvFileReadFailed = zerr.New("failed to read env file")

	// ErrUnsupportedConfigVersion is returned when the config declares an unknown schema version.
	ErrUnsupportedConfigVersion = zerr.New("unsupported config version, expected \"1\"")

	// ErrConflictingHooks is returned when a target declares more than one on-success hook.
	ErrConflictingHooks = zerr.New("target declares both 'onSuccess' and 'copy'")

	// ErrMetricsWriteFailed is returned when the metrics text file cannot be written.
	ErrMetricsWriteFailed = zerr.New("failed to write metrics file")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to start file watcher")
)
