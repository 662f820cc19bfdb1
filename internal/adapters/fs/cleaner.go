package fs

import (
	"os"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputCleaner = (*Cleaner)(nil)

// Cleaner removes output directories.
type Cleaner struct{}

// NewCleaner creates a new Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean removes outDir and everything below it. outDir must lie strictly
// inside root. A missing directory is not an error.
func (c *Cleaner) Clean(outDir, root string) error {
	abs, err := domain.ContainedPath(outDir, root)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(abs); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanOutput.Error()), "path", abs)
	}
	return nil
}
