package detect_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/services/detect"
	"github.com/jeryldev/pyworks/internal/testutil"
)

var testEnv = domain.Environment{
	Name:        ".venv",
	Kind:        domain.EnvVenv,
	Root:        "/proj/.venv",
	Interpreter: "/proj/.venv/bin/python",
	Fingerprint: "fp123",
}

// projectFile writes src into a fresh project root carrying a marker, so
// root resolution stops there instead of walking into the host filesystem.
func projectFile(t *testing.T, name, src string) (root, path string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	path = filepath.Join(root, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return root, path
}

func TestDetectScript(t *testing.T) {
	root, path := projectFile(t, "main.py", "import numpy\n")
	reqs := []domain.Requirement{{Import: "numpy", Distribution: "numpy", Source: "scan"}}
	statuses := []domain.PackageStatus{{Requirement: reqs[0], Installed: true}}

	envs := new(testutil.MockEnvs)
	envs.On("Select", mock.Anything, root, "").Return(testEnv, nil)

	kernels := new(testutil.MockKernels)
	kernels.On("List", mock.Anything).Return([]domain.Kernelspec{}, nil)

	packages := new(testutil.MockPackages)
	packages.On("Requirements", path, root).Return(reqs, nil)
	packages.On("Check", mock.Anything, testEnv, reqs, false).Return(statuses, nil)

	svc := detect.New(envs, kernels, packages, detect.Options{})
	report, err := svc.Detect(context.Background(), path, domain.DetectOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.FilePython, report.Kind)
	assert.Equal(t, path, report.File)
	require.NotNil(t, report.Environment)
	assert.Equal(t, ".venv", report.Environment.Name)
	// No kernelspecs anywhere, so a plain script skips the Jupyter phase.
	assert.False(t, report.JupyterChecked)
	assert.Empty(t, report.Missing)
	assert.False(t, report.GeneratedAt.IsZero())

	envs.AssertExpectations(t)
	packages.AssertExpectations(t)
}

func TestDetectNotebookChecksJupyter(t *testing.T) {
	root, path := projectFile(t, "analysis.ipynb",
		`{"cells": [{"cell_type": "code", "source": ["import pandas\n"]}], "metadata": {}}`)
	reqs := []domain.Requirement{{Import: "pandas", Distribution: "pandas", Source: "scan"}}
	statuses := []domain.PackageStatus{{Requirement: reqs[0], Installed: true}}
	spec := domain.Kernelspec{Name: "pyworks-venv", Argv: []string{testEnv.Interpreter}}

	envs := new(testutil.MockEnvs)
	envs.On("Select", mock.Anything, root, "").Return(testEnv, nil)

	kernels := new(testutil.MockKernels)
	kernels.On("List", mock.Anything).Return([]domain.Kernelspec{spec}, nil)
	kernels.On("JupyterReady", mock.Anything, testEnv).Return(true, nil)
	kernels.On("Match", testEnv, []domain.Kernelspec{spec}).Return(spec, true)

	packages := new(testutil.MockPackages)
	packages.On("Requirements", path, root).Return(reqs, nil)
	packages.On("Check", mock.Anything, testEnv, reqs, false).Return(statuses, nil)

	svc := detect.New(envs, kernels, packages, detect.Options{})
	report, err := svc.Detect(context.Background(), path, domain.DetectOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.FileNotebook, report.Kind)
	assert.True(t, report.JupyterChecked)
	assert.True(t, report.JupyterReady)
	require.NotNil(t, report.Kernel)
	assert.Equal(t, "pyworks-venv", report.Kernel.Name)
	kernels.AssertExpectations(t)
}

func TestDetectScriptWithRegisteredKernels(t *testing.T) {
	root, path := projectFile(t, "main.py", "import numpy\n")
	spec := domain.Kernelspec{Name: "python3", Argv: []string{"/usr/bin/python3"}}

	envs := new(testutil.MockEnvs)
	envs.On("Select", mock.Anything, root, "").Return(testEnv, nil)

	kernels := new(testutil.MockKernels)
	kernels.On("List", mock.Anything).Return([]domain.Kernelspec{spec}, nil)
	kernels.On("JupyterReady", mock.Anything, testEnv).Return(false, nil)
	kernels.On("Match", testEnv, []domain.Kernelspec{spec}).Return(nil, false)

	packages := new(testutil.MockPackages)
	packages.On("Requirements", path, root).Return([]domain.Requirement{}, nil)
	packages.On("Check", mock.Anything, testEnv, []domain.Requirement{}, false).
		Return([]domain.PackageStatus{}, nil)

	svc := detect.New(envs, kernels, packages, detect.Options{})
	report, err := svc.Detect(context.Background(), path, domain.DetectOptions{})
	require.NoError(t, err)

	// Registered kernelspecs pull plain scripts into the Jupyter phase.
	assert.True(t, report.JupyterChecked)
	assert.False(t, report.JupyterReady)
	assert.Nil(t, report.Kernel)
}

func TestDetectReportsMissing(t *testing.T) {
	root, path := projectFile(t, "main.py", "import numpy\nimport pandas\n")
	reqs := []domain.Requirement{
		{Import: "numpy", Distribution: "numpy", Source: "scan"},
		{Import: "pandas", Distribution: "pandas", Source: "scan"},
	}
	statuses := []domain.PackageStatus{
		{Requirement: reqs[0], Installed: true},
		{Requirement: reqs[1], Installed: false},
	}

	envs := new(testutil.MockEnvs)
	envs.On("Select", mock.Anything, root, "").Return(testEnv, nil)
	kernels := new(testutil.MockKernels)
	kernels.On("List", mock.Anything).Return([]domain.Kernelspec{}, nil)
	packages := new(testutil.MockPackages)
	packages.On("Requirements", path, root).Return(reqs, nil)
	packages.On("Check", mock.Anything, testEnv, reqs, false).Return(statuses, nil)

	svc := detect.New(envs, kernels, packages, detect.Options{})
	report, err := svc.Detect(context.Background(), path, domain.DetectOptions{})
	require.NoError(t, err)

	require.Len(t, report.Missing, 1)
	assert.Equal(t, "pandas", report.Missing[0].Distribution)
}

func TestDetectRejectsOtherFiles(t *testing.T) {
	_, path := projectFile(t, "README.md", "# readme\n")

	svc := detect.New(new(testutil.MockEnvs), new(testutil.MockKernels), new(testutil.MockPackages), detect.Options{})
	_, err := svc.Detect(context.Background(), path, domain.DetectOptions{})
	assert.ErrorIs(t, err, domain.ErrNotPythonFile)
}

func TestDetectMissingFile(t *testing.T) {
	svc := detect.New(new(testutil.MockEnvs), new(testutil.MockKernels), new(testutil.MockPackages), detect.Options{})
	_, err := svc.Detect(context.Background(), filepath.Join(t.TempDir(), "gone.py"), domain.DetectOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDetectFreshRescans(t *testing.T) {
	root, path := projectFile(t, "main.py", "import numpy\n")

	envs := new(testutil.MockEnvs)
	envs.On("Rescan", mock.Anything, root).Return([]domain.Environment{testEnv}, nil).Once()
	envs.On("Select", mock.Anything, root, "").Return(testEnv, nil)
	kernels := new(testutil.MockKernels)
	kernels.On("List", mock.Anything).Return([]domain.Kernelspec{}, nil)
	packages := new(testutil.MockPackages)
	packages.On("Requirements", path, root).Return([]domain.Requirement{}, nil)
	packages.On("Check", mock.Anything, testEnv, []domain.Requirement{}, true).
		Return([]domain.PackageStatus{}, nil).Once()

	svc := detect.New(envs, kernels, packages, detect.Options{})
	_, err := svc.Detect(context.Background(), path, domain.DetectOptions{Fresh: true})
	require.NoError(t, err)
	envs.AssertExpectations(t)
	packages.AssertExpectations(t)
}

func TestDetectWithLatest(t *testing.T) {
	root, path := projectFile(t, "main.py", "import numpy\n")
	reqs := []domain.Requirement{{Import: "numpy", Distribution: "numpy", Source: "scan"}}
	statuses := []domain.PackageStatus{{Requirement: reqs[0], Installed: true}}

	envs := new(testutil.MockEnvs)
	envs.On("Select", mock.Anything, root, "").Return(testEnv, nil)
	kernels := new(testutil.MockKernels)
	kernels.On("List", mock.Anything).Return([]domain.Kernelspec{}, nil)
	packages := new(testutil.MockPackages)
	packages.On("Requirements", path, root).Return(reqs, nil)
	packages.On("Check", mock.Anything, testEnv, reqs, false).Return(statuses, nil)
	packages.On("Latest", mock.Anything, "numpy").Return("1.26.4", nil)

	svc := detect.New(envs, kernels, packages, detect.Options{})
	report, err := svc.Detect(context.Background(), path, domain.DetectOptions{WithLatest: true})
	require.NoError(t, err)
	require.Len(t, report.Packages, 1)
	assert.Equal(t, "1.26.4", report.Packages[0].Latest)
}

func TestDetectSelectError(t *testing.T) {
	root, path := projectFile(t, "main.py", "import numpy\n")

	envs := new(testutil.MockEnvs)
	envs.On("Select", mock.Anything, root, "").Return(nil, domain.ErrNoEnvironment)

	svc := detect.New(envs, new(testutil.MockKernels), new(testutil.MockPackages), detect.Options{})
	_, err := svc.Detect(context.Background(), path, domain.DetectOptions{})
	assert.ErrorIs(t, err, domain.ErrNoEnvironment)
}
