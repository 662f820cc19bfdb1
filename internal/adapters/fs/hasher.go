package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactHasher = (*Hasher)(nil)

// Hasher computes xxhash digests of build artifacts.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the compiler's output list
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // read-only

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	return digest.Sum64(), nil
}

// ComputeDigest hashes every file in paths, expanding directories, as pairs of
// root-relative slash path and content hash in sorted path order. The digest is
// independent of the order of paths and of where root lives on disk.
func (h *Hasher) ComputeDigest(paths []string, root string) (string, error) {
	files := make(map[string]string)
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, p)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", abs)
		}

		if !info.IsDir() {
			files[relSlash(root, abs)] = abs
			continue
		}
		for file := range h.walker.WalkFiles(abs, nil) {
			files[relSlash(root, file)] = file
		}
	}

	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	digest := xxhash.New()
	for _, rel := range keys {
		_, _ = digest.WriteString(rel)
		_, _ = digest.Write([]byte{0})

		sum, err := h.ComputeFileHash(files[rel])
		if err != nil {
			return "", err
		}
		if err := binary.Write(digest, binary.LittleEndian, sum); err != nil {
			return "", zerr.Wrap(err, domain.ErrWriteHashFailed.Error())
		}
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
