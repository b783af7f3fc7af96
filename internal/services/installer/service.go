package installer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
	"github.com/jeryldev/pyworks/internal/util/pathutil"
)

// Options tunes installer selection.
type Options struct {
	// AllowUV permits using uv when it is on PATH. pip remains the fallback.
	AllowUV bool
	// Override, when set, is used verbatim as the install argv prefix.
	Override []string
	LookPath func(string) (string, error)
}

// Service installs missing distributions into an environment.
type Service struct {
	runner domain.PythonRunner
	opts   Options
}

// New returns an install service backed by the given runner.
func New(runner domain.PythonRunner, opts Options) *Service {
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	return &Service{runner: runner, opts: opts}
}

// Command resolves the install argv prefix for env: the configured override,
// uv when allowed and present, otherwise the environment's own pip.
func (s *Service) Command(env domain.Environment) ([]string, error) {
	if len(s.opts.Override) > 0 {
		return append([]string(nil), s.opts.Override...), nil
	}
	if s.opts.AllowUV {
		if uv, err := s.opts.LookPath("uv"); err == nil {
			return []string{uv, "pip", "install", "--python", env.Interpreter}, nil
		}
	}
	if pathutil.IsExecutable(env.Interpreter) {
		return []string{env.Interpreter, "-m", "pip", "install"}, nil
	}
	return nil, fmt.Errorf("%w: no uv on PATH and no interpreter at %s", domain.ErrInstallerNotFound, env.Interpreter)
}

// Install installs the distributions one at a time, emitting progress, then
// re-probes the environment to verify every one of them became importable.
func (s *Service) Install(ctx context.Context, env domain.Environment, distributions []string, progress func(domain.InstallProgress)) error {
	emit := func(p domain.InstallProgress) {
		if progress != nil {
			progress(p)
		}
	}

	argv, err := s.Command(env)
	if err != nil {
		return err
	}
	total := len(distributions)

	for i, dist := range distributions {
		emit(domain.InstallProgress{Distribution: dist, Index: i + 1, Total: total})

		log.WithFields(log.Fields{"distribution": dist, "argv": strings.Join(argv, " ")}).Debug("installing")
		res, err := s.runner.Command(ctx, argv[0], append(argv[1:], dist)...)
		if err != nil {
			emit(domain.InstallProgress{Distribution: dist, Index: i + 1, Total: total, Err: err})
			return fmt.Errorf("install %s: %w", dist, err)
		}
		if res.Stdout != "" {
			log.WithField("distribution", dist).Debug(strings.TrimSpace(res.Stdout))
		}
		if res.ExitCode != 0 {
			err := fmt.Errorf("install %s: %s", dist, lastLine(res.Stderr))
			emit(domain.InstallProgress{Distribution: dist, Index: i + 1, Total: total, Err: err})
			return err
		}
		emit(domain.InstallProgress{Distribution: dist, Index: i + 1, Total: total, Done: true})
	}

	return s.verify(ctx, env, distributions)
}

// verify re-probes the environment for the modules the installed
// distributions provide.
func (s *Service) verify(ctx context.Context, env domain.Environment, distributions []string) error {
	mods := make([]string, len(distributions))
	for i, dist := range distributions {
		mods[i] = imports.ImportName(dist)
	}
	installed, err := s.runner.CheckImports(ctx, env.Interpreter, mods)
	if err != nil {
		return fmt.Errorf("verify install: %w", err)
	}

	var missing []string
	for i, m := range mods {
		if !installed[m] {
			missing = append(missing, distributions[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w after install: %s", domain.ErrMissingPackages, strings.Join(missing, ", "))
	}
	return nil
}

// lastLine trims pip's output down to its final, most relevant line.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Compile-time assertion that Service implements domain.InstallService.
var _ domain.InstallService = (*Service)(nil)
