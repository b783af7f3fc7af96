package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jeryldev/pyworks/internal/domain"
)

// MockRunner is a mock of domain.PythonRunner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Version(ctx context.Context, interpreter string) (string, error) {
	args := m.Called(ctx, interpreter)
	return args.String(0), args.Error(1)
}

func (m *MockRunner) CheckImports(ctx context.Context, interpreter string, modules []string) (map[string]bool, error) {
	args := m.Called(ctx, interpreter, modules)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockRunner) Run(ctx context.Context, interpreter, script, dir string) (domain.RunResult, error) {
	args := m.Called(ctx, interpreter, script, dir)
	if args.Get(0) == nil {
		return domain.RunResult{}, args.Error(1)
	}
	return args.Get(0).(domain.RunResult), args.Error(1)
}

func (m *MockRunner) Command(ctx context.Context, name string, cmdArgs ...string) (domain.RunResult, error) {
	args := m.Called(ctx, name, cmdArgs)
	if args.Get(0) == nil {
		return domain.RunResult{}, args.Error(1)
	}
	return args.Get(0).(domain.RunResult), args.Error(1)
}

// MockCache is a mock of domain.CacheStore.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) LoadEnvironments(root string) ([]domain.Environment, time.Time, bool, error) {
	args := m.Called(root)
	var envs []domain.Environment
	if args.Get(0) != nil {
		envs = args.Get(0).([]domain.Environment)
	}
	return envs, args.Get(1).(time.Time), args.Bool(2), args.Error(3)
}

func (m *MockCache) SaveEnvironments(root string, envs []domain.Environment) error {
	args := m.Called(root, envs)
	return args.Error(0)
}

func (m *MockCache) LoadProbe(fingerprint string) (map[string]bool, time.Time, bool, error) {
	args := m.Called(fingerprint)
	var installed map[string]bool
	if args.Get(0) != nil {
		installed = args.Get(0).(map[string]bool)
	}
	return installed, args.Get(1).(time.Time), args.Bool(2), args.Error(3)
}

func (m *MockCache) SaveProbe(fingerprint string, installed map[string]bool) error {
	args := m.Called(fingerprint, installed)
	return args.Error(0)
}

func (m *MockCache) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// MockEnvs is a mock of domain.EnvironmentService.
type MockEnvs struct {
	mock.Mock
}

func (m *MockEnvs) Environments(ctx context.Context, root string) ([]domain.Environment, error) {
	args := m.Called(ctx, root)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Environment), args.Error(1)
}

func (m *MockEnvs) Rescan(ctx context.Context, root string) ([]domain.Environment, error) {
	args := m.Called(ctx, root)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Environment), args.Error(1)
}

func (m *MockEnvs) Select(ctx context.Context, root, override string) (domain.Environment, error) {
	args := m.Called(ctx, root, override)
	if args.Get(0) == nil {
		return domain.Environment{}, args.Error(1)
	}
	return args.Get(0).(domain.Environment), args.Error(1)
}

// MockKernels is a mock of domain.KernelService.
type MockKernels struct {
	mock.Mock
}

func (m *MockKernels) List(ctx context.Context) ([]domain.Kernelspec, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Kernelspec), args.Error(1)
}

func (m *MockKernels) Match(env domain.Environment, specs []domain.Kernelspec) (domain.Kernelspec, bool) {
	args := m.Called(env, specs)
	if args.Get(0) == nil {
		return domain.Kernelspec{}, args.Bool(1)
	}
	return args.Get(0).(domain.Kernelspec), args.Bool(1)
}

func (m *MockKernels) JupyterReady(ctx context.Context, env domain.Environment) (bool, error) {
	args := m.Called(ctx, env)
	return args.Bool(0), args.Error(1)
}

func (m *MockKernels) Register(ctx context.Context, env domain.Environment, name string) (domain.Kernelspec, error) {
	args := m.Called(ctx, env, name)
	if args.Get(0) == nil {
		return domain.Kernelspec{}, args.Error(1)
	}
	return args.Get(0).(domain.Kernelspec), args.Error(1)
}

func (m *MockKernels) WriteConnectionFile(env domain.Environment, spec domain.Kernelspec) (string, domain.ConnectionFile, error) {
	args := m.Called(env, spec)
	if args.Get(1) == nil {
		return args.String(0), domain.ConnectionFile{}, args.Error(2)
	}
	return args.String(0), args.Get(1).(domain.ConnectionFile), args.Error(2)
}

// MockPackages is a mock of domain.PackageService.
type MockPackages struct {
	mock.Mock
}

func (m *MockPackages) Requirements(path, root string) ([]domain.Requirement, error) {
	args := m.Called(path, root)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Requirement), args.Error(1)
}

func (m *MockPackages) Check(ctx context.Context, env domain.Environment, reqs []domain.Requirement, fresh bool) ([]domain.PackageStatus, error) {
	args := m.Called(ctx, env, reqs, fresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PackageStatus), args.Error(1)
}

func (m *MockPackages) Latest(ctx context.Context, distribution string) (string, error) {
	args := m.Called(ctx, distribution)
	return args.String(0), args.Error(1)
}

// MockInstaller is a mock of domain.InstallService.
type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) Command(env domain.Environment) ([]string, error) {
	args := m.Called(env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInstaller) Install(ctx context.Context, env domain.Environment, distributions []string, progress func(domain.InstallProgress)) error {
	args := m.Called(ctx, env, distributions, progress)
	return args.Error(0)
}

// MockIndex is a mock of domain.PackageIndex.
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) LatestVersion(ctx context.Context, distribution string) (string, error) {
	args := m.Called(ctx, distribution)
	return args.String(0), args.Error(1)
}

// Compile-time assertions that every mock satisfies its domain interface.
var (
	_ domain.PythonRunner       = (*MockRunner)(nil)
	_ domain.CacheStore         = (*MockCache)(nil)
	_ domain.EnvironmentService = (*MockEnvs)(nil)
	_ domain.KernelService      = (*MockKernels)(nil)
	_ domain.PackageService     = (*MockPackages)(nil)
	_ domain.InstallService     = (*MockInstaller)(nil)
	_ domain.PackageIndex       = (*MockIndex)(nil)
)
