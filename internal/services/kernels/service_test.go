package kernels_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/services/kernels"
	"github.com/jeryldev/pyworks/internal/testutil"
)

func envmap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeKernel(t *testing.T, dataDir, name string, argv []string) {
	t.Helper()
	dir := filepath.Join(dataDir, "kernels", name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	b, err := json.Marshal(map[string]any{
		"argv":         argv,
		"display_name": "Python (" + name + ")",
		"language":     "python",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kernel.json"), b, 0o644))
}

func TestListReadsDataDirs(t *testing.T) {
	dataDir := t.TempDir()
	writeKernel(t, dataDir, "python3", []string{"/usr/bin/python3", "-m", "ipykernel_launcher", "-f", "{connection_file}"})
	writeKernel(t, dataDir, "pyworks-venv", []string{"/proj/.venv/bin/python", "-m", "ipykernel_launcher", "-f", "{connection_file}"})

	svc := kernels.New(new(testutil.MockRunner), kernels.Options{
		Home:   t.TempDir(),
		Getenv: envmap(map[string]string{"JUPYTER_DATA_DIR": dataDir}),
	})
	specs, err := svc.List(context.Background())
	require.NoError(t, err)

	// The host may carry system kernelspecs, so look ours up by name. The
	// user data dir precedes the system dirs, so same-named system specs
	// cannot shadow these.
	byName := specsByName(specs)
	require.Contains(t, byName, "python3")
	require.Contains(t, byName, "pyworks-venv")
	assert.Equal(t, "python", byName["python3"].Language)
	assert.Len(t, byName["python3"].Argv, 5)
	assert.Equal(t, "/proj/.venv/bin/python", byName["pyworks-venv"].Argv[0])
}

func specsByName(specs []domain.Kernelspec) map[string]domain.Kernelspec {
	m := make(map[string]domain.Kernelspec, len(specs))
	for _, sp := range specs {
		m[sp.Name] = sp
	}
	return m
}

func TestListEarlierDirsShadowLater(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeKernel(t, first, "python3", []string{"/first/bin/python"})
	writeKernel(t, second, "python3", []string{"/second/bin/python"})

	svc := kernels.New(new(testutil.MockRunner), kernels.Options{
		Home: t.TempDir(),
		Getenv: envmap(map[string]string{
			"JUPYTER_PATH":     first + string(os.PathListSeparator) + second,
			"JUPYTER_DATA_DIR": t.TempDir(),
		}),
	})
	specs, err := svc.List(context.Background())
	require.NoError(t, err)

	byName := specsByName(specs)
	require.Contains(t, byName, "python3")
	assert.Equal(t, "/first/bin/python", byName["python3"].Argv[0])
}

func TestMatch(t *testing.T) {
	svc := kernels.New(new(testutil.MockRunner), kernels.Options{Home: t.TempDir(), Getenv: envmap(nil)})

	env := domain.Environment{
		Name:        ".venv",
		Root:        "/proj/.venv",
		Interpreter: "/proj/.venv/bin/python",
	}
	specs := []domain.Kernelspec{
		{Name: "python3", Argv: []string{"/usr/bin/python3"}},
		{Name: "pyworks-venv", Argv: []string{"/proj/.venv/bin/python", "-m", "ipykernel_launcher"}},
	}

	got, ok := svc.Match(env, specs)
	require.True(t, ok)
	assert.Equal(t, "pyworks-venv", got.Name)

	_, ok = svc.Match(domain.Environment{Root: "/elsewhere", Interpreter: "/elsewhere/bin/python"}, specs)
	assert.False(t, ok)
}

func TestJupyterReady(t *testing.T) {
	env := domain.Environment{Interpreter: "/proj/.venv/bin/python"}

	runner := new(testutil.MockRunner)
	runner.On("CheckImports", mock.Anything, env.Interpreter, []string{"ipykernel"}).
		Return(map[string]bool{"ipykernel": true}, nil)

	svc := kernels.New(runner, kernels.Options{Home: t.TempDir(), Getenv: envmap(nil)})
	ready, err := svc.JupyterReady(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestRegister(t *testing.T) {
	dataDir := t.TempDir()
	env := domain.Environment{Name: ".venv", Interpreter: "/proj/.venv/bin/python"}

	runner := new(testutil.MockRunner)
	runner.On("CheckImports", mock.Anything, env.Interpreter, []string{"ipykernel"}).
		Return(map[string]bool{"ipykernel": true}, nil)

	svc := kernels.New(runner, kernels.Options{
		Home:   t.TempDir(),
		Getenv: envmap(map[string]string{"JUPYTER_DATA_DIR": dataDir}),
	})
	spec, err := svc.Register(context.Background(), env, "")
	require.NoError(t, err)
	assert.Equal(t, "pyworks-venv", spec.Name)
	assert.Equal(t, []string{env.Interpreter, "-m", "ipykernel_launcher", "-f", "{connection_file}"}, spec.Argv)

	// The registration is immediately visible to List.
	specs, err := svc.List(context.Background())
	require.NoError(t, err)
	byName := specsByName(specs)
	require.Contains(t, byName, spec.Name)
	assert.Equal(t, "Python (.venv)", byName[spec.Name].DisplayName)
}

func TestRegisterRequiresIpykernel(t *testing.T) {
	env := domain.Environment{Name: ".venv", Interpreter: "/proj/.venv/bin/python"}

	runner := new(testutil.MockRunner)
	runner.On("CheckImports", mock.Anything, env.Interpreter, []string{"ipykernel"}).
		Return(map[string]bool{"ipykernel": false}, nil)

	svc := kernels.New(runner, kernels.Options{
		Home:   t.TempDir(),
		Getenv: envmap(map[string]string{"JUPYTER_DATA_DIR": t.TempDir()}),
	})
	_, err := svc.Register(context.Background(), env, "")
	assert.ErrorIs(t, err, domain.ErrJupyterNotReady)
}

func TestKernelName(t *testing.T) {
	cases := []struct {
		env  domain.Environment
		want string
	}{
		{domain.Environment{Name: ".venv"}, "pyworks-venv"},
		{domain.Environment{Name: "ML Research"}, "pyworks-ml-research"},
		{domain.Environment{Name: "3.11.9"}, "pyworks-3.11.9"},
		{domain.Environment{Name: "", Kind: domain.EnvSystem}, "pyworks-system"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, kernels.KernelName(tc.env), tc.env.Name)
	}
}

func TestWriteConnectionFile(t *testing.T) {
	runtime := t.TempDir()
	svc := kernels.New(new(testutil.MockRunner), kernels.Options{
		Home:   t.TempDir(),
		Getenv: envmap(map[string]string{"JUPYTER_RUNTIME_DIR": runtime}),
	})

	env := domain.Environment{Name: ".venv", Interpreter: "/proj/.venv/bin/python"}
	spec := domain.Kernelspec{Name: "pyworks-venv"}

	path, conn, err := svc.WriteConnectionFile(env, spec)
	require.NoError(t, err)
	assert.Equal(t, runtime, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "kernel-")

	ports := []int{conn.ShellPort, conn.IOPubPort, conn.StdinPort, conn.ControlPort, conn.HBPort}
	distinct := make(map[int]struct{})
	for _, p := range ports {
		assert.Greater(t, p, 0)
		distinct[p] = struct{}{}
	}
	assert.Len(t, distinct, 5)

	assert.Equal(t, "127.0.0.1", conn.IP)
	assert.Equal(t, "tcp", conn.Transport)
	assert.Equal(t, "hmac-sha256", conn.SignatureScheme)
	assert.NotEmpty(t, conn.Key)
	assert.Equal(t, "pyworks-venv", conn.KernelName)

	// The file on disk round-trips to the same connection info.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk domain.ConnectionFile
	require.NoError(t, json.Unmarshal(b, &onDisk))
	assert.Equal(t, conn, onDisk)
}
