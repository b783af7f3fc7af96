package pathutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/pyworks/internal/util/pathutil"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, pathutil.Exists(file))
	assert.True(t, pathutil.Exists(dir))
	assert.False(t, pathutil.Exists(filepath.Join(dir, "absent")))
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()

	exe := filepath.Join(dir, "runme")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))

	assert.True(t, pathutil.IsExecutable(exe))
	assert.False(t, pathutil.IsExecutable(plain))
	// Directories have the execute bit but are not executables.
	assert.False(t, pathutil.IsExecutable(dir))
	assert.False(t, pathutil.IsExecutable(filepath.Join(dir, "absent")))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/u", pathutil.ExpandHome("~", "/home/u"))
	assert.Equal(t, "/home/u/envs/demo", pathutil.ExpandHome("~/envs/demo", "/home/u"))
	assert.Equal(t, "/opt/conda", pathutil.ExpandHome("/opt/conda", "/home/u"))
	// "~other" is a different user's home, not ours to expand.
	assert.Equal(t, "~other/envs", pathutil.ExpandHome("~other/envs", "/home/u"))
}
