package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/logger"
)

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	var h slog.Handler = logger.NewPrettyHandler(buf, nil)
	h = h.WithAttrs([]slog.Attr{slog.String("target", "esm")})
	h = h.WithGroup("build")

	l := slog.New(h)
	l.Info("done", "artifacts", 3)

	assert.Equal(t, "[esm] done build.artifacts=3\n", buf.String())
}

func TestPrettyHandler_TargetPrefix(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := slog.New(logger.NewPrettyHandler(buf, nil))

	l.Warn("skipping declarations for src/index.js", logger.TargetKey, "cjs")
	l.Info("watching for changes")

	assert.Equal(t, "[cjs] ! skipping declarations for src/index.js\nwatching for changes\n", buf.String())
}

func TestPrettyHandler_GroupedTargetIsAnAttribute(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := slog.New(logger.NewPrettyHandler(buf, nil).WithGroup("hook"))
	l.Info("done", logger.TargetKey, "esm")

	assert.Equal(t, "done hook.target=esm\n", buf.String())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, h.Enabled(context.Background(), slog.LevelError))
}
