package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// ContainedPath resolves p against root and returns the absolute path if it
// lies strictly inside root. Anything else wraps ErrOutputDirOutsideRoot.
func ContainedPath(p, root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", zerr.Wrap(err, ErrFailedToGetRoot.Error())
	}

	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(absRoot, filepath.FromSlash(p))
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(ErrOutputDirOutsideRoot, "path", p)
	}
	return abs, nil
}

// Overlaps reports whether a and b are the same directory or one contains the other.
// Both paths must be absolute and clean.
func Overlaps(a, b string) bool {
	if a == b {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(a, b+sep) || strings.HasPrefix(b, a+sep)
}
