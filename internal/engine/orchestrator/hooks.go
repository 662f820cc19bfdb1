package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports"
	"go.trai.ch/zerr"
)

// runHook runs the target's on-success hook. Output is written to span.
func (o *Orchestrator) runHook(
	ctx context.Context,
	t *domain.Target,
	res domain.BuildResult,
	root string,
	span ports.Span,
) error {
	switch h := t.OnSuccess.(type) {
	case domain.HookFunc:
		return callHookFunc(ctx, h, res)
	case domain.CommandHook:
		if len(h.Command) == 0 {
			return nil
		}
		return o.executor.Execute(ctx, &domain.Command{
			Name:        h.Command[0],
			Args:        h.Command[1:],
			Environment: h.Environment,
			WorkingDir:  root,
		}, span, span)
	case domain.CopyHook:
		return o.copyHook(h, root, span)
	default:
		return zerr.With(domain.ErrHookFailed, "kind", fmt.Sprintf("%T", h))
	}
}

// callHookFunc runs h and reports a panic as an error so sibling targets keep building.
func callHookFunc(ctx context.Context, h domain.HookFunc, res domain.BuildResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.New(fmt.Sprintf("hook panicked: %v", r)), "target", res.Target)
		}
	}()
	return h(ctx, res)
}

func (o *Orchestrator) copyHook(h domain.CopyHook, root string, span ports.Span) error {
	from := h.From
	if !filepath.IsAbs(from) {
		from = filepath.Join(root, from)
	}
	to, err := domain.ContainedPath(h.To, root)
	if err != nil {
		return err
	}

	info, err := os.Stat(from)
	if errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(span, "nothing to copy: %s does not exist\n", h.From)
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat copy source"), "path", from)
	}
	if !info.IsDir() {
		return zerr.With(zerr.New("copy source is not a directory"), "path", from)
	}

	if err := copyTree(from, to); err != nil {
		return err
	}

	if h.Message != "" {
		o.logger.Info(h.Message)
		_, _ = fmt.Fprintln(span, h.Message)
	}
	return nil
}

// copyTree copies the regular files below src into dst, creating directories
// as needed and overwriting files that already exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, domain.DirPerm)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) //nolint:gosec // src is below the configured copy source
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.FilePerm) //nolint:gosec // dst is inside the project root
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	return nil
}
