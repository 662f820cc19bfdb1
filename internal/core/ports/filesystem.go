package ports

//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks

// EntryPointResolver resolves configured entry points to concrete files.
type EntryPointResolver interface {
	// ResolveEntryPoints returns absolute paths for the given entry points, in order.
	// Entry points may omit their extension. A missing entry point yields an error
	// wrapping domain.ErrEntryPointNotFound.
	ResolveEntryPoints(entries []string, root string) ([]string, error)
}

// ArtifactHasher computes digests over build artifacts.
type ArtifactHasher interface {
	// ComputeDigest hashes the given files (paths and contents) in sorted order.
	ComputeDigest(paths []string, root string) (string, error)
}

// OutputCleaner removes output directories.
type OutputCleaner interface {
	// Clean removes outDir after checking it lies inside root.
	Clean(outDir, root string) error
}
