package detect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
	"github.com/jeryldev/pyworks/internal/manifest"
)

// Options tunes the detection flow.
type Options struct {
	// AlwaysCheckJupyter checks kernel support even for plain .py files with
	// no kernelspecs registered anywhere.
	AlwaysCheckJupyter bool
}

// Service runs the full auto-detection flow for one file.
type Service struct {
	envs     domain.EnvironmentService
	kernels  domain.KernelService
	packages domain.PackageService
	opts     Options
}

// New returns a detect service wired to the given collaborators.
func New(envs domain.EnvironmentService, kernels domain.KernelService, packages domain.PackageService, opts Options) *Service {
	return &Service{envs: envs, kernels: kernels, packages: packages, opts: opts}
}

// Detect classifies the file, selects an environment, checks Jupyter support
// and probes the packages the file needs. The report lists what is missing;
// deciding the exit status from it is the caller's business.
func (s *Service) Detect(ctx context.Context, path string, opts domain.DetectOptions) (domain.Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Report{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return domain.Report{}, err
	}

	kind := imports.Classify(abs)
	if kind == domain.FileOther {
		return domain.Report{}, fmt.Errorf("%w: %s", domain.ErrNotPythonFile, abs)
	}

	root, ok := manifest.FindProjectRoot(abs)
	if !ok {
		root = filepath.Dir(abs)
	}
	log.WithFields(log.Fields{"file": abs, "root": root}).Debug("resolved project root")

	if opts.Fresh {
		if _, err := s.envs.Rescan(ctx, root); err != nil {
			return domain.Report{}, err
		}
	}
	env, err := s.envs.Select(ctx, root, opts.Env)
	if err != nil {
		return domain.Report{}, err
	}
	log.WithFields(log.Fields{
		"env":         env.Name,
		"kind":        env.Kind,
		"interpreter": env.Interpreter,
	}).Info("selected environment")

	report := domain.Report{
		File:        abs,
		Kind:        kind,
		Environment: &env,
		GeneratedAt: time.Now().UTC(),
	}

	s.checkJupyter(ctx, env, kind, &report)

	reqs, err := s.packages.Requirements(abs, root)
	if err != nil {
		return domain.Report{}, err
	}
	statuses, err := s.packages.Check(ctx, env, reqs, opts.Fresh)
	if err != nil {
		return domain.Report{}, err
	}
	if opts.WithLatest {
		s.fillLatest(ctx, statuses)
	}

	report.Packages = statuses
	report.Missing = domain.MissingOf(statuses)
	if len(report.Missing) > 0 {
		log.WithField("count", len(report.Missing)).Info("missing packages detected")
	}
	return report, nil
}

// checkJupyter runs the kernel phase. Notebooks always check; plain scripts
// check when any kernelspec is registered or the always-check option is set.
func (s *Service) checkJupyter(ctx context.Context, env domain.Environment, kind domain.FileKind, report *domain.Report) {
	specs, err := s.kernels.List(ctx)
	if err != nil {
		log.WithError(err).Warn("list kernelspecs")
	}
	if kind == domain.FilePython {
		if len(specs) == 0 && !s.opts.AlwaysCheckJupyter {
			return
		}
		log.Info("Detected Python file - checking for Jupyter support...")
	} else {
		log.Info("Detected notebook - checking for Jupyter support...")
	}
	report.JupyterChecked = true

	ready, err := s.kernels.JupyterReady(ctx, env)
	if err != nil {
		// A failed probe degrades to "not ready" rather than aborting the run.
		log.WithError(err).Warn("jupyter readiness probe")
	}
	report.JupyterReady = ready

	if spec, ok := s.kernels.Match(env, specs); ok {
		report.Kernel = &spec
		log.WithField("kernel", spec.Name).Info("matched Jupyter kernel")
	} else if ready {
		log.Debug("no kernelspec registered for this environment yet")
	}
}

// fillLatest annotates each status with the newest release on the index.
// Lookups stop at the first sign the index is disabled.
func (s *Service) fillLatest(ctx context.Context, statuses []domain.PackageStatus) {
	for i := range statuses {
		v, err := s.packages.Latest(ctx, statuses[i].Distribution)
		if err != nil {
			if errors.Is(err, domain.ErrIndexDisabled) {
				return
			}
			log.WithError(err).WithField("distribution", statuses[i].Distribution).
				Debug("latest version lookup failed")
			continue
		}
		statuses[i].Latest = v
	}
}

// Compile-time assertion that Service implements domain.DetectService.
var _ domain.DetectService = (*Service)(nil)
