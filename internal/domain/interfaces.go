package domain

import (
	"context"
	"time"
)

// PythonRunner executes Python interpreters and related tooling as
// subprocesses. All calls honor the context and the runner's own timeout.
type PythonRunner interface {
	// Version reports the interpreter version, e.g. "3.12.1".
	Version(ctx context.Context, interpreter string) (string, error)

	// CheckImports probes importability of each top-level module in a single
	// interpreter invocation.
	CheckImports(ctx context.Context, interpreter string, modules []string) (map[string]bool, error)

	// Run executes a script file with the given working directory.
	Run(ctx context.Context, interpreter, script, dir string) (RunResult, error)

	// Command executes an arbitrary argv, used for pip and uv.
	Command(ctx context.Context, name string, args ...string) (RunResult, error)
}

// EnvironmentService discovers Python environments and picks one for a project.
type EnvironmentService interface {
	// Environments returns the environments visible from root, served from
	// cache when fresh enough.
	Environments(ctx context.Context, root string) ([]Environment, error)

	// Rescan ignores the cache, rediscovers and re-caches.
	Rescan(ctx context.Context, root string) ([]Environment, error)

	// Select applies the selection precedence and returns the environment to
	// use for root. The override may be an environment name or an interpreter
	// path; empty means automatic.
	Select(ctx context.Context, root, override string) (Environment, error)
}

// KernelService handles Jupyter kernelspec discovery and initialization.
type KernelService interface {
	// List parses every kernel.json found in the Jupyter data dirs.
	List(ctx context.Context) ([]Kernelspec, error)

	// Match returns the kernelspec whose argv resolves inside env, if any.
	Match(env Environment, specs []Kernelspec) (Kernelspec, bool)

	// JupyterReady reports whether ipykernel is importable in env.
	JupyterReady(ctx context.Context, env Environment) (bool, error)

	// Register writes a kernelspec for env under the user Jupyter data dir and
	// returns it. An empty name derives one from the environment.
	Register(ctx context.Context, env Environment, name string) (Kernelspec, error)

	// WriteConnectionFile creates a fresh kernel connection file in the
	// Jupyter runtime dir and returns its path and contents.
	WriteConnectionFile(env Environment, spec Kernelspec) (string, ConnectionFile, error)
}

// PackageService resolves requirements and probes what is installed.
type PackageService interface {
	// Requirements collects third-party requirements for a file: imports
	// scanned from the source plus declarations from project manifests at
	// root.
	Requirements(path, root string) ([]Requirement, error)

	// Check probes env for every requirement, using cached probe results
	// unless fresh is set.
	Check(ctx context.Context, env Environment, reqs []Requirement, fresh bool) ([]PackageStatus, error)

	// Latest asks the package index for the newest release of a distribution.
	Latest(ctx context.Context, distribution string) (string, error)
}

// InstallService installs missing distributions into an environment.
type InstallService interface {
	// Command resolves the installer argv prefix used for env, so callers can
	// show what will run before confirming.
	Command(env Environment) ([]string, error)

	// Install installs the distributions one at a time, emitting progress,
	// then re-probes to verify the result.
	Install(ctx context.Context, env Environment, distributions []string, progress func(InstallProgress)) error
}

// DetectService runs the full auto-detection flow for one file.
type DetectService interface {
	Detect(ctx context.Context, path string, opts DetectOptions) (Report, error)
}

// SelftestService owns the canonical detection fixture and runs it.
type SelftestService interface {
	// Script returns the fixture source. The content is byte-stable across
	// calls and releases.
	Script() []byte

	// WriteScript writes the fixture to path.
	WriteScript(path string) error

	// Run executes the fixture under the selected environment and reports the
	// child's verbatim stdout, stderr and exit status.
	Run(ctx context.Context, override string) (SelftestResult, error)
}

// CacheStore persists detection state between runs.
type CacheStore interface {
	LoadEnvironments(root string) (envs []Environment, savedAt time.Time, ok bool, err error)
	SaveEnvironments(root string, envs []Environment) error

	LoadProbe(fingerprint string) (installed map[string]bool, savedAt time.Time, ok bool, err error)
	SaveProbe(fingerprint string, installed map[string]bool) error

	// Clear drops all cached state.
	Clear() error
}

// PackageIndex looks up distribution metadata on a package index.
type PackageIndex interface {
	LatestVersion(ctx context.Context, distribution string) (string, error)
}
