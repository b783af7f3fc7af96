package installer_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/services/installer"
	"github.com/jeryldev/pyworks/internal/testutil"
)

func lookpath(m map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if p, ok := m[name]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
}

// fakeInterpreter returns an executable path usable as env.Interpreter.
func fakeInterpreter(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestCommandPrefersUV(t *testing.T) {
	interp := fakeInterpreter(t)
	env := domain.Environment{Interpreter: interp}

	svc := installer.New(new(testutil.MockRunner), installer.Options{
		AllowUV:  true,
		LookPath: lookpath(map[string]string{"uv": "/usr/local/bin/uv"}),
	})
	argv, err := svc.Command(env)
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/local/bin/uv", "pip", "install", "--python", interp}, argv)
}

func TestCommandFallsBackToPip(t *testing.T) {
	interp := fakeInterpreter(t)
	env := domain.Environment{Interpreter: interp}

	svc := installer.New(new(testutil.MockRunner), installer.Options{
		AllowUV:  true,
		LookPath: lookpath(nil),
	})
	argv, err := svc.Command(env)
	require.NoError(t, err)
	assert.Equal(t, []string{interp, "-m", "pip", "install"}, argv)
}

func TestCommandOverrideWins(t *testing.T) {
	svc := installer.New(new(testutil.MockRunner), installer.Options{
		Override: []string{"pip", "install", "--user"},
		LookPath: lookpath(map[string]string{"uv": "/usr/local/bin/uv"}),
	})
	argv, err := svc.Command(domain.Environment{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pip", "install", "--user"}, argv)
}

func TestCommandNothingAvailable(t *testing.T) {
	svc := installer.New(new(testutil.MockRunner), installer.Options{
		AllowUV:  true,
		LookPath: lookpath(nil),
	})
	_, err := svc.Command(domain.Environment{Interpreter: "/nope/python"})
	assert.ErrorIs(t, err, domain.ErrInstallerNotFound)
}

func TestInstall(t *testing.T) {
	interp := fakeInterpreter(t)
	env := domain.Environment{Interpreter: interp}

	runner := new(testutil.MockRunner)
	runner.On("Command", mock.Anything, interp, []string{"-m", "pip", "install", "numpy"}).
		Return(domain.RunResult{Stdout: "Successfully installed numpy-1.26.4"}, nil).Once()
	runner.On("Command", mock.Anything, interp, []string{"-m", "pip", "install", "pandas"}).
		Return(domain.RunResult{Stdout: "Successfully installed pandas-2.2.2"}, nil).Once()
	runner.On("CheckImports", mock.Anything, interp, []string{"numpy", "pandas"}).
		Return(map[string]bool{"numpy": true, "pandas": true}, nil).Once()

	svc := installer.New(runner, installer.Options{LookPath: lookpath(nil)})

	var events []domain.InstallProgress
	err := svc.Install(context.Background(), env, []string{"numpy", "pandas"},
		func(p domain.InstallProgress) { events = append(events, p) })
	require.NoError(t, err)
	runner.AssertExpectations(t)

	require.Len(t, events, 4)
	assert.Equal(t, domain.InstallProgress{Distribution: "numpy", Index: 1, Total: 2}, events[0])
	assert.Equal(t, domain.InstallProgress{Distribution: "numpy", Index: 1, Total: 2, Done: true}, events[1])
	assert.Equal(t, domain.InstallProgress{Distribution: "pandas", Index: 2, Total: 2}, events[2])
	assert.True(t, events[3].Done)
}

func TestInstallMapsImportNames(t *testing.T) {
	interp := fakeInterpreter(t)
	env := domain.Environment{Interpreter: interp}

	runner := new(testutil.MockRunner)
	runner.On("Command", mock.Anything, interp, []string{"-m", "pip", "install", "opencv-python"}).
		Return(domain.RunResult{}, nil).Once()
	runner.On("CheckImports", mock.Anything, interp, []string{"cv2"}).
		Return(map[string]bool{"cv2": true}, nil).Once()

	svc := installer.New(runner, installer.Options{LookPath: lookpath(nil)})
	err := svc.Install(context.Background(), env, []string{"opencv-python"}, nil)
	require.NoError(t, err)
	runner.AssertExpectations(t)
}

func TestInstallSubprocessFailure(t *testing.T) {
	interp := fakeInterpreter(t)
	env := domain.Environment{Interpreter: interp}

	runner := new(testutil.MockRunner)
	runner.On("Command", mock.Anything, interp, []string{"-m", "pip", "install", "numpy"}).
		Return(domain.RunResult{
			Stderr:   "Collecting numpy\nERROR: No matching distribution found for numpy",
			ExitCode: 1,
		}, nil).Once()

	svc := installer.New(runner, installer.Options{LookPath: lookpath(nil)})

	var events []domain.InstallProgress
	err := svc.Install(context.Background(), env, []string{"numpy"},
		func(p domain.InstallProgress) { events = append(events, p) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No matching distribution found")

	require.Len(t, events, 2)
	require.Error(t, events[1].Err)
}

func TestInstallVerifyCatchesStillMissing(t *testing.T) {
	interp := fakeInterpreter(t)
	env := domain.Environment{Interpreter: interp}

	runner := new(testutil.MockRunner)
	runner.On("Command", mock.Anything, interp, []string{"-m", "pip", "install", "numpy"}).
		Return(domain.RunResult{}, nil).Once()
	runner.On("CheckImports", mock.Anything, interp, []string{"numpy"}).
		Return(map[string]bool{"numpy": false}, nil).Once()

	svc := installer.New(runner, installer.Options{LookPath: lookpath(nil)})
	err := svc.Install(context.Background(), env, []string{"numpy"}, nil)
	assert.ErrorIs(t, err, domain.ErrMissingPackages)
	assert.Contains(t, err.Error(), "numpy")
}

func TestInstallRunnerError(t *testing.T) {
	interp := fakeInterpreter(t)
	env := domain.Environment{Interpreter: interp}

	boom := errors.New("context deadline exceeded")
	runner := new(testutil.MockRunner)
	runner.On("Command", mock.Anything, interp, []string{"-m", "pip", "install", "numpy"}).
		Return(nil, boom).Once()

	svc := installer.New(runner, installer.Options{LookPath: lookpath(nil)})
	err := svc.Install(context.Background(), env, []string{"numpy"}, nil)
	assert.ErrorIs(t, err, boom)
}
