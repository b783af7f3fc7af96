package kernels

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jeryldev/pyworks/internal/domain"
)

// NamePrefix prefixes every kernelspec this tool registers, so re-runs find
// and update their own registrations instead of multiplying them.
const NamePrefix = "pyworks-"

// Options tunes where kernelspecs are looked up and written.
type Options struct {
	Home   string
	Getenv func(string) string
	// ExtraDataDirs are searched in addition to the standard Jupyter dirs.
	ExtraDataDirs []string
}

// Service handles Jupyter kernelspec discovery and registration.
type Service struct {
	runner domain.PythonRunner
	opts   Options
}

// New returns a kernel service backed by the given runner.
func New(runner domain.PythonRunner, opts Options) *Service {
	if opts.Home == "" {
		opts.Home, _ = os.UserHomeDir()
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	return &Service{runner: runner, opts: opts}
}

// List parses every kernel.json found under the Jupyter data dirs. Specs in
// earlier dirs shadow same-named specs in later ones, matching Jupyter's own
// resolution order.
func (s *Service) List(ctx context.Context) ([]domain.Kernelspec, error) {
	seen := make(map[string]struct{})
	var specs []domain.Kernelspec

	for _, dataDir := range s.dataDirs() {
		entries, err := os.ReadDir(filepath.Join(dataDir, "kernels"))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if _, shadowed := seen[e.Name()]; shadowed {
				continue
			}
			dir := filepath.Join(dataDir, "kernels", e.Name())
			spec, err := readKernelspec(dir, e.Name())
			if err != nil {
				log.WithError(err).WithField("dir", dir).Debug("skip unreadable kernelspec")
				continue
			}
			seen[e.Name()] = struct{}{}
			specs = append(specs, spec)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

// Match returns the kernelspec whose argv runs inside env, preferring an
// exact interpreter match over a same-root one.
func (s *Service) Match(env domain.Environment, specs []domain.Kernelspec) (domain.Kernelspec, bool) {
	var inRoot *domain.Kernelspec
	for i, spec := range specs {
		if len(spec.Argv) == 0 {
			continue
		}
		argv0 := spec.Argv[0]
		if argv0 == env.Interpreter {
			return spec, true
		}
		if env.Root != "" && strings.HasPrefix(argv0, env.Root+string(filepath.Separator)) && inRoot == nil {
			inRoot = &specs[i]
		}
	}
	if inRoot != nil {
		return *inRoot, true
	}
	return domain.Kernelspec{}, false
}

// JupyterReady reports whether ipykernel is importable in env.
func (s *Service) JupyterReady(ctx context.Context, env domain.Environment) (bool, error) {
	installed, err := s.runner.CheckImports(ctx, env.Interpreter, []string{"ipykernel"})
	if err != nil {
		return false, err
	}
	return installed["ipykernel"], nil
}

// Register writes a kernelspec for env under the user Jupyter data dir. An
// empty name derives one from the environment name.
func (s *Service) Register(ctx context.Context, env domain.Environment, name string) (domain.Kernelspec, error) {
	ready, err := s.JupyterReady(ctx, env)
	if err != nil {
		return domain.Kernelspec{}, err
	}
	if !ready {
		return domain.Kernelspec{}, fmt.Errorf("%w: ipykernel is not installed in %s", domain.ErrJupyterNotReady, env.Name)
	}

	if name == "" {
		name = KernelName(env)
	}
	spec := domain.Kernelspec{
		Name:        name,
		DisplayName: fmt.Sprintf("Python (%s)", env.Name),
		Language:    "python",
		Argv:        []string{env.Interpreter, "-m", "ipykernel_launcher", "-f", "{connection_file}"},
	}

	dir := filepath.Join(s.userDataDir(), "kernels", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.Kernelspec{}, err
	}
	spec.Dir = dir

	b, err := json.MarshalIndent(kernelJSON{
		Argv:        spec.Argv,
		DisplayName: spec.DisplayName,
		Language:    spec.Language,
	}, "", "  ")
	if err != nil {
		return domain.Kernelspec{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, "kernel.json"), append(b, '\n'), 0o644); err != nil {
		return domain.Kernelspec{}, err
	}

	log.WithFields(log.Fields{"kernel": name, "env": env.Name}).Info("registered Jupyter kernel")
	return spec, nil
}

// WriteConnectionFile creates a fresh kernel connection file in the Jupyter
// runtime dir: five distinct loopback ports, a UUID session key and the
// hmac-sha256 signature scheme.
func (s *Service) WriteConnectionFile(env domain.Environment, spec domain.Kernelspec) (string, domain.ConnectionFile, error) {
	ports, err := freePorts(5)
	if err != nil {
		return "", domain.ConnectionFile{}, err
	}

	conn := domain.ConnectionFile{
		ShellPort:       ports[0],
		IOPubPort:       ports[1],
		StdinPort:       ports[2],
		ControlPort:     ports[3],
		HBPort:          ports[4],
		IP:              "127.0.0.1",
		Key:             uuid.NewString(),
		Transport:       "tcp",
		SignatureScheme: "hmac-sha256",
		KernelName:      spec.Name,
	}

	dir := s.runtimeDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", domain.ConnectionFile{}, err
	}
	path := filepath.Join(dir, fmt.Sprintf("kernel-%s.json", uuid.NewString()))

	b, err := json.MarshalIndent(conn, "", "  ")
	if err != nil {
		return "", domain.ConnectionFile{}, err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o600); err != nil {
		return "", domain.ConnectionFile{}, err
	}
	return path, conn, nil
}

// KernelName derives the slugified kernelspec name for an environment.
func KernelName(env domain.Environment) string {
	slug := strings.ToLower(strings.Trim(env.Name, "."))
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}
	slug = strings.Map(mapper, slug)
	if slug == "" {
		slug = string(env.Kind)
	}
	return NamePrefix + slug
}

// ---------- lookup dirs ----------

// dataDirs lists the Jupyter data dirs in resolution order: $JUPYTER_PATH
// entries, configured extras, the user dir, then the system dirs.
func (s *Service) dataDirs() []string {
	var dirs []string
	if jp := s.opts.Getenv("JUPYTER_PATH"); jp != "" {
		dirs = append(dirs, filepath.SplitList(jp)...)
	}
	dirs = append(dirs, s.opts.ExtraDataDirs...)
	dirs = append(dirs, s.userDataDir(),
		"/usr/local/share/jupyter",
		"/usr/share/jupyter",
	)
	return dirs
}

// userDataDir is where registrations are written: $JUPYTER_DATA_DIR, or the
// XDG data home fallback used by Jupyter on Linux.
func (s *Service) userDataDir() string {
	if dir := s.opts.Getenv("JUPYTER_DATA_DIR"); dir != "" {
		return dir
	}
	if xdg := s.opts.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "jupyter")
	}
	return filepath.Join(s.opts.Home, ".local", "share", "jupyter")
}

func (s *Service) runtimeDir() string {
	if dir := s.opts.Getenv("JUPYTER_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(s.userDataDir(), "runtime")
}

// ---------- plain helpers ----------

// kernelJSON is the on-disk kernel.json schema.
type kernelJSON struct {
	Argv          []string          `json:"argv"`
	DisplayName   string            `json:"display_name"`
	Language      string            `json:"language"`
	Env           map[string]string `json:"env,omitempty"`
	InterruptMode string            `json:"interrupt_mode,omitempty"`
}

func readKernelspec(dir, name string) (domain.Kernelspec, error) {
	b, err := os.ReadFile(filepath.Join(dir, "kernel.json"))
	if err != nil {
		return domain.Kernelspec{}, err
	}
	var kj kernelJSON
	if err := json.Unmarshal(b, &kj); err != nil {
		return domain.Kernelspec{}, fmt.Errorf("parse %s: %w", filepath.Join(dir, "kernel.json"), err)
	}
	return domain.Kernelspec{
		Name:          name,
		Dir:           dir,
		DisplayName:   kj.DisplayName,
		Language:      kj.Language,
		Argv:          kj.Argv,
		Env:           kj.Env,
		InterruptMode: kj.InterruptMode,
	}, nil
}

// freePorts reserves n distinct ephemeral TCP ports. The listeners are closed
// before returning, which is how jupyter_client picks ports as well.
func freePorts(n int) ([]int, error) {
	listeners := make([]net.Listener, 0, n)
	defer func() {
		for _, l := range listeners {
			_ = l.Close()
		}
	}()

	ports := make([]int, 0, n)
	for len(ports) < n {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, l)
		ports = append(ports, l.Addr().(*net.TCPAddr).Port)
	}
	return ports, nil
}

// Compile-time assertion that Service implements domain.KernelService.
var _ domain.KernelService = (*Service)(nil)
