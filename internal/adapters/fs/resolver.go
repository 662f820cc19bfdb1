package fs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EntryPointResolver = (*Resolver)(nil)

// entryExtensions are tried, in order, for entry points given without extension.
var entryExtensions = []string{"", ".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// Resolver maps configured entry points to files on disk.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveEntryPoints returns one absolute path per entry, in order.
//
// An entry is tried as written, then with each known source extension, then
// as a directory holding an index file. Entries containing glob metacharacters
// expand to their sorted matches. Duplicates are dropped.
func (r *Resolver) ResolveEntryPoints(entries []string, root string) ([]string, error) {
	resolved := make([]string, 0, len(entries))

	for _, entry := range entries {
		path := entry
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, filepath.FromSlash(entry))
		}

		var matches []string
		if strings.ContainsAny(entry, "*?[") {
			globbed, err := filepath.Glob(path)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to glob entry point"), "entry", entry)
			}
			for _, m := range globbed {
				if isFile(m) {
					matches = append(matches, m)
				}
			}
		} else if file, ok := withExtension(path); ok {
			matches = []string{file}
		}

		if len(matches) == 0 {
			return nil, zerr.With(domain.ErrEntryPointNotFound, "entry", entry)
		}

		for _, m := range matches {
			if !slices.Contains(resolved, m) {
				resolved = append(resolved, m)
			}
		}
	}

	return resolved, nil
}

func withExtension(path string) (string, bool) {
	for _, ext := range entryExtensions {
		if isFile(path + ext) {
			return path + ext, true
		}
	}
	for _, ext := range entryExtensions[1:] {
		candidate := filepath.Join(path, "index"+ext)
		if isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
