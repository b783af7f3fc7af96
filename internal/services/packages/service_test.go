package packages_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/services/packages"
	"github.com/jeryldev/pyworks/internal/store"
	"github.com/jeryldev/pyworks/internal/testutil"
)

var testEnv = domain.Environment{
	Name:        ".venv",
	Kind:        domain.EnvVenv,
	Interpreter: "/proj/.venv/bin/python",
	Fingerprint: "fp123",
}

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func newService(t *testing.T, runner domain.PythonRunner) *packages.Service {
	t.Helper()
	cache := store.NewFileStore(filepath.Join(t.TempDir(), "cache"))
	return packages.New(runner, cache, new(testutil.MockIndex), time.Minute)
}

func TestRequirementsFromScript(t *testing.T) {
	root := t.TempDir()
	path := writeScript(t, root, "main.py", "import numpy as np\nimport cv2\nimport os\n")

	svc := newService(t, new(testutil.MockRunner))
	reqs, err := svc.Requirements(path, root)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, domain.Requirement{Import: "cv2", Distribution: "opencv-python", Source: "scan"}, reqs[0])
	assert.Equal(t, domain.Requirement{Import: "numpy", Distribution: "numpy", Source: "scan"}, reqs[1])
}

func TestRequirementsMergesManifests(t *testing.T) {
	root := t.TempDir()
	path := writeScript(t, root, "main.py", "import numpy\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"),
		[]byte("numpy==1.26.4\npandas>=2.0\n"), 0o644))

	svc := newService(t, new(testutil.MockRunner))
	reqs, err := svc.Requirements(path, root)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	// The scanned entry wins over the manifest duplicate.
	assert.Equal(t, "scan", reqs[0].Source)
	assert.Equal(t, "numpy", reqs[0].Distribution)
	assert.Equal(t, "requirements.txt", reqs[1].Source)
	assert.Equal(t, "pandas", reqs[1].Distribution)
}

func TestRequirementsFromNotebook(t *testing.T) {
	root := t.TempDir()
	path := writeScript(t, root, "analysis.ipynb",
		`{"cells": [{"cell_type": "code", "source": ["import pandas\n"]}], "metadata": {}}`)

	svc := newService(t, new(testutil.MockRunner))
	reqs, err := svc.Requirements(path, root)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "pandas", reqs[0].Distribution)
}

func TestRequirementsRejectsOtherFiles(t *testing.T) {
	root := t.TempDir()
	path := writeScript(t, root, "README.md", "# hi\n")

	svc := newService(t, new(testutil.MockRunner))
	_, err := svc.Requirements(path, root)
	assert.ErrorIs(t, err, domain.ErrNotPythonFile)
}

func TestCheckProbesAndCaches(t *testing.T) {
	reqs := []domain.Requirement{
		{Import: "numpy", Distribution: "numpy"},
		{Import: "pandas", Distribution: "pandas"},
	}

	runner := new(testutil.MockRunner)
	runner.On("CheckImports", mock.Anything, testEnv.Interpreter, []string{"numpy", "pandas"}).
		Return(map[string]bool{"numpy": true, "pandas": false}, nil).Once()

	svc := newService(t, runner)
	statuses, err := svc.Check(context.Background(), testEnv, reqs, false)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Installed)
	assert.False(t, statuses[1].Installed)

	// Second check is served from cache; the mock would fail on a second call.
	again, err := svc.Check(context.Background(), testEnv, reqs, false)
	require.NoError(t, err)
	assert.Equal(t, statuses, again)
	runner.AssertExpectations(t)
}

func TestCheckFreshBypassesCache(t *testing.T) {
	reqs := []domain.Requirement{{Import: "numpy", Distribution: "numpy"}}

	runner := new(testutil.MockRunner)
	runner.On("CheckImports", mock.Anything, testEnv.Interpreter, []string{"numpy"}).
		Return(map[string]bool{"numpy": true}, nil).Twice()

	svc := newService(t, runner)
	_, err := svc.Check(context.Background(), testEnv, reqs, false)
	require.NoError(t, err)
	_, err = svc.Check(context.Background(), testEnv, reqs, true)
	require.NoError(t, err)
	runner.AssertExpectations(t)
}

func TestCheckCacheMissOnNewModule(t *testing.T) {
	runner := new(testutil.MockRunner)
	runner.On("CheckImports", mock.Anything, testEnv.Interpreter, []string{"numpy"}).
		Return(map[string]bool{"numpy": true}, nil).Once()
	runner.On("CheckImports", mock.Anything, testEnv.Interpreter, []string{"numpy", "scipy"}).
		Return(map[string]bool{"numpy": true, "scipy": false}, nil).Once()

	svc := newService(t, runner)
	_, err := svc.Check(context.Background(), testEnv,
		[]domain.Requirement{{Import: "numpy", Distribution: "numpy"}}, false)
	require.NoError(t, err)

	// A requirement the cache has never answered forces a re-probe.
	statuses, err := svc.Check(context.Background(), testEnv, []domain.Requirement{
		{Import: "numpy", Distribution: "numpy"},
		{Import: "scipy", Distribution: "scipy"},
	}, false)
	require.NoError(t, err)
	assert.False(t, statuses[1].Installed)
	runner.AssertExpectations(t)
}

func TestLatestDelegatesToIndex(t *testing.T) {
	index := new(testutil.MockIndex)
	index.On("LatestVersion", mock.Anything, "numpy").Return("1.26.4", nil)

	cache := store.NewFileStore(filepath.Join(t.TempDir(), "cache"))
	svc := packages.New(new(testutil.MockRunner), cache, index, time.Minute)

	v, err := svc.Latest(context.Background(), "numpy")
	require.NoError(t, err)
	assert.Equal(t, "1.26.4", v)
}
