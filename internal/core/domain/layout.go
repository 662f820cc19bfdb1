package domain

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "pack.yaml"

	// EnvFileName is the name of the optional dotenv file loaded next to the configuration.
	EnvFileName = ".env"

	// DefaultSourceDir is the conventional source directory of a library.
	DefaultSourceDir = "src"

	// DefaultEntryPoint is the entry point used when no configuration file exists.
	DefaultEntryPoint = "src/index.ts"

	// DefaultAssetsSource is the directory copied by the default esm hook.
	DefaultAssetsSource = "src/assets"

	// DefaultAssetsDestination is where the default esm hook copies assets to.
	DefaultAssetsDestination = "dist/assets"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)
