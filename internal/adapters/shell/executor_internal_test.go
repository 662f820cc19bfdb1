package shell_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/shell"
)

func TestResolveEnvironment(t *testing.T) {
	sys := []string{"PATH=/usr/bin", "HOME=/home/dev", "AWS_SECRET=x", "broken"}
	got := shell.ResolveEnvironment(sys, map[string]string{"HOME": "/tmp/home", "NODE_ENV": "production"})

	assert.Equal(t, []string{"HOME=/tmp/home", "NODE_ENV=production", "PATH=/usr/bin"}, got)
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "tsc")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o700)) //nolint:gosec // executable fixture

	got, err := shell.LookPath("tsc", []string{"PATH=/nonexistent" + string(os.PathListSeparator) + dir})
	require.NoError(t, err)
	assert.Equal(t, tool, got)

	_, err = shell.LookPath("tsc", nil)
	require.ErrorIs(t, err, exec.ErrNotFound)
}
