package envdetect

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/fingerprint"
	"github.com/jeryldev/pyworks/internal/util/pathutil"
)

// DefaultTTL bounds how long a discovered environment list is trusted.
const DefaultTTL = time.Hour

// defaultVenvNames are the project-local directories checked for a venv.
var defaultVenvNames = []string{".venv", "venv", "env", ".env"}

// Options tunes discovery. Zero values select the defaults above plus the
// process environment; tests inject their own lookups.
type Options struct {
	TTL       time.Duration
	VenvNames []string
	Home      string
	Getenv    func(string) string
	LookPath  func(string) (string, error)
}

// Service discovers Python environments and picks one for a project.
type Service struct {
	runner domain.PythonRunner
	cache  domain.CacheStore
	opts   Options
}

// New returns an environment service backed by the given runner and cache.
func New(runner domain.PythonRunner, cache domain.CacheStore, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if len(opts.VenvNames) == 0 {
		opts.VenvNames = defaultVenvNames
	}
	if opts.Home == "" {
		opts.Home, _ = os.UserHomeDir()
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	return &Service{runner: runner, cache: cache, opts: opts}
}

// Environments returns the environments visible from root, served from cache
// while fresh. Active flags are always recomputed from the calling shell.
func (s *Service) Environments(ctx context.Context, root string) ([]domain.Environment, error) {
	envs, savedAt, ok, err := s.cache.LoadEnvironments(root)
	if err != nil {
		log.WithError(err).Warn("read environment cache")
	}
	if ok && time.Since(savedAt) <= s.opts.TTL {
		log.WithField("root", root).Debug("environment cache hit")
		s.markActive(envs)
		return envs, nil
	}
	return s.Rescan(ctx, root)
}

// Rescan ignores the cache, rediscovers and re-caches.
func (s *Service) Rescan(ctx context.Context, root string) ([]domain.Environment, error) {
	envs := s.discover(ctx, root)
	if err := s.cache.SaveEnvironments(root, envs); err != nil {
		log.WithError(err).Warn("cache environments")
	}
	log.WithFields(log.Fields{"root": root, "count": len(envs)}).Debug("environments discovered")
	return envs, nil
}

// Select applies the selection precedence and returns the environment to use
// for root: explicit override, active conda env, project-local venv, the
// pyenv version pinned by .python-version, any conda env, then the system
// interpreter.
func (s *Service) Select(ctx context.Context, root, override string) (domain.Environment, error) {
	envs, err := s.Environments(ctx, root)
	if err != nil {
		return domain.Environment{}, err
	}
	if override != "" {
		return s.resolveOverride(ctx, envs, override)
	}

	for _, env := range envs {
		if env.Kind == domain.EnvConda && env.Active {
			return env, nil
		}
	}
	for _, env := range envs {
		local := env.Kind == domain.EnvVenv || env.Kind == domain.EnvPoetry
		if local && filepath.Dir(env.Root) == root {
			return env, nil
		}
	}
	if pin, ok := s.pythonVersionPin(root); ok {
		for _, env := range envs {
			if env.Kind == domain.EnvPyenv && env.Name == pin {
				return env, nil
			}
		}
	}
	for _, env := range envs {
		if env.Kind == domain.EnvConda {
			return env, nil
		}
	}
	for _, env := range envs {
		if env.Kind == domain.EnvSystem {
			return env, nil
		}
	}
	return domain.Environment{}, domain.ErrNoEnvironment
}

// ---------- discovery ----------

func (s *Service) discover(ctx context.Context, root string) []domain.Environment {
	var envs []domain.Environment
	seen := make(map[string]struct{})

	add := func(env domain.Environment, ok bool) {
		if !ok {
			return
		}
		if _, dup := seen[env.Root]; dup {
			return
		}
		seen[env.Root] = struct{}{}
		envs = append(envs, env)
	}

	poetry := isPoetryProject(root)
	for _, name := range s.opts.VenvNames {
		add(s.venvAt(filepath.Join(root, name), poetry))
	}
	if active := s.opts.Getenv("VIRTUAL_ENV"); active != "" {
		add(s.venvAt(active, false))
	}
	for _, condaRoot := range s.condaRoots() {
		add(s.condaAt(ctx, condaRoot))
	}
	for _, versionDir := range s.pyenvVersionDirs() {
		add(s.pyenvAt(versionDir))
	}
	add(s.systemPython(ctx))

	s.markActive(envs)
	return envs
}

// venvAt recognizes a virtualenv by its pyvenv.cfg and interpreter. Poetry
// projects report their in-project venv with the poetry kind.
func (s *Service) venvAt(dir string, poetry bool) (domain.Environment, bool) {
	cfg, ok := parsePyvenvCfg(filepath.Join(dir, "pyvenv.cfg"))
	if !ok {
		return domain.Environment{}, false
	}
	interp := filepath.Join(dir, "bin", "python")
	if !pathutil.IsExecutable(interp) {
		return domain.Environment{}, false
	}

	kind := domain.EnvVenv
	if poetry {
		kind = domain.EnvPoetry
	}
	version := versionFromCfg(cfg)
	return domain.Environment{
		Name:         filepath.Base(dir),
		Kind:         kind,
		Root:         dir,
		Interpreter:  interp,
		Version:      version,
		SitePackages: sitePackagesDir(dir),
		Fingerprint:  fingerprint.Sum(interp, version, dir),
	}, true
}

// condaRoots lists candidate conda env roots: the active prefix plus every
// entry in ~/.conda/environments.txt, which conda maintains for all envs.
func (s *Service) condaRoots() []string {
	var roots []string
	if prefix := s.opts.Getenv("CONDA_PREFIX"); prefix != "" {
		roots = append(roots, prefix)
	}
	listing := filepath.Join(s.opts.Home, ".conda", "environments.txt")
	f, err := os.Open(listing)
	if err != nil {
		return roots
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			roots = append(roots, pathutil.ExpandHome(line, s.opts.Home))
		}
	}
	return roots
}

func (s *Service) condaAt(ctx context.Context, root string) (domain.Environment, bool) {
	interp := filepath.Join(root, "bin", "python")
	if !pathutil.IsExecutable(interp) {
		return domain.Environment{}, false
	}

	name := "base"
	if filepath.Base(filepath.Dir(root)) == "envs" {
		name = filepath.Base(root)
	}
	version := s.probeVersion(ctx, interp)
	return domain.Environment{
		Name:         name,
		Kind:         domain.EnvConda,
		Root:         root,
		Interpreter:  interp,
		Version:      version,
		SitePackages: sitePackagesDir(root),
		Fingerprint:  fingerprint.Sum(interp, version, root),
	}, true
}

func (s *Service) pyenvVersionDirs() []string {
	pyenvRoot := s.opts.Getenv("PYENV_ROOT")
	if pyenvRoot == "" {
		pyenvRoot = filepath.Join(s.opts.Home, ".pyenv")
	}
	entries, err := os.ReadDir(filepath.Join(pyenvRoot, "versions"))
	if err != nil {
		return nil
	}
	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(pyenvRoot, "versions", e.Name()))
		}
	}
	return dirs
}

// pyenvAt trusts the version directory name, which pyenv sets to the exact
// release it installed.
func (s *Service) pyenvAt(dir string) (domain.Environment, bool) {
	interp := filepath.Join(dir, "bin", "python")
	if !pathutil.IsExecutable(interp) {
		return domain.Environment{}, false
	}
	version := filepath.Base(dir)
	return domain.Environment{
		Name:         version,
		Kind:         domain.EnvPyenv,
		Root:         dir,
		Interpreter:  interp,
		Version:      version,
		SitePackages: sitePackagesDir(dir),
		Fingerprint:  fingerprint.Sum(interp, version, dir),
	}, true
}

func (s *Service) systemPython(ctx context.Context) (domain.Environment, bool) {
	interp, err := s.opts.LookPath("python3")
	if err != nil {
		if interp, err = s.opts.LookPath("python"); err != nil {
			return domain.Environment{}, false
		}
	}
	version := s.probeVersion(ctx, interp)
	root := filepath.Dir(filepath.Dir(interp))
	return domain.Environment{
		Name:        "system",
		Kind:        domain.EnvSystem,
		Root:        root,
		Interpreter: interp,
		Version:     version,
		Fingerprint: fingerprint.Sum(interp, version, root),
	}, true
}

// ---------- selection helpers ----------

func (s *Service) resolveOverride(ctx context.Context, envs []domain.Environment, override string) (domain.Environment, error) {
	for _, env := range envs {
		if env.Name == override || env.Root == override || env.Interpreter == override {
			return env, nil
		}
	}
	if pathutil.IsExecutable(override) {
		version := s.probeVersion(ctx, override)
		root := filepath.Dir(filepath.Dir(override))
		return domain.Environment{
			Name:         filepath.Base(root),
			Kind:         inferKind(override),
			Root:         root,
			Interpreter:  override,
			Version:      version,
			SitePackages: sitePackagesDir(root),
			Fingerprint:  fingerprint.Sum(override, version, root),
		}, nil
	}
	return domain.Environment{}, domain.ErrEnvNotFound
}

func (s *Service) pythonVersionPin(root string) (string, bool) {
	b, err := os.ReadFile(filepath.Join(root, ".python-version"))
	if err != nil {
		return "", false
	}
	line, _, _ := strings.Cut(string(b), "\n")
	line = strings.TrimSpace(line)
	return line, line != ""
}

func (s *Service) markActive(envs []domain.Environment) {
	virtual := s.opts.Getenv("VIRTUAL_ENV")
	conda := s.opts.Getenv("CONDA_PREFIX")
	for i := range envs {
		envs[i].Active = envs[i].Root != "" &&
			(envs[i].Root == virtual || envs[i].Root == conda)
	}
}

func (s *Service) probeVersion(ctx context.Context, interp string) string {
	v, err := s.runner.Version(ctx, interp)
	if err != nil {
		log.WithError(err).WithField("interpreter", interp).Debug("version probe failed")
		return ""
	}
	return v
}

// ---------- plain helpers ----------

func isPoetryProject(root string) bool {
	b, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return false
	}
	return strings.Contains(string(b), "[tool.poetry]")
}

// parsePyvenvCfg reads the "key = value" lines of a pyvenv.cfg.
func parsePyvenvCfg(path string) (map[string]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	cfg := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		cfg[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return cfg, true
}

// versionFromCfg prefers the plain version key; uv and recent CPython write
// version_info = "3.12.1.final.0" instead, so trim it to the numeric prefix.
func versionFromCfg(cfg map[string]string) string {
	if v := cfg["version"]; v != "" {
		return v
	}
	parts := strings.Split(cfg["version_info"], ".")
	var keep []string
	for _, p := range parts {
		if p == "" || p[0] < '0' || p[0] > '9' {
			break
		}
		keep = append(keep, p)
	}
	return strings.Join(keep, ".")
}

func sitePackagesDir(root string) string {
	matches, err := filepath.Glob(filepath.Join(root, "lib", "python*", "site-packages"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

func inferKind(interpreter string) domain.EnvKind {
	switch {
	case strings.Contains(interpreter, string(filepath.Separator)+".pyenv"+string(filepath.Separator)):
		return domain.EnvPyenv
	case strings.Contains(interpreter, "conda"):
		return domain.EnvConda
	case pathutil.Exists(filepath.Join(filepath.Dir(filepath.Dir(interpreter)), "pyvenv.cfg")):
		return domain.EnvVenv
	default:
		return domain.EnvSystem
	}
}

// Compile-time assertion that Service implements domain.EnvironmentService.
var _ domain.EnvironmentService = (*Service)(nil)
