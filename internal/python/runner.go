package python

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jeryldev/pyworks/internal/domain"
)

// probeProgram prints one line per requested module: "ok <mod>" or
// "missing <mod>". find_spec does not execute the module, so probing is cheap
// and side-effect free.
const probeProgram = `import importlib.util, sys
for mod in sys.argv[1:]:
    try:
        spec = importlib.util.find_spec(mod)
    except (ImportError, ValueError):
        spec = None
    print(("ok " if spec is not None else "missing ") + mod)
`

// Runner executes Python interpreters and installer tooling as subprocesses.
type Runner struct {
	// timeout bounds Version, CheckImports and Run. Command is bounded only by
	// the caller's context, since installs can legitimately take minutes.
	timeout time.Duration
}

// New returns a Runner with the given per-probe timeout. Zero disables it.
func New(timeout time.Duration) *Runner { return &Runner{timeout: timeout} }

func (r *Runner) probeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Version reports the interpreter version, e.g. "3.12.1".
func (r *Runner) Version(ctx context.Context, interpreter string) (string, error) {
	ctx, cancel := r.probeContext(ctx)
	defer cancel()

	res, err := r.Command(ctx, interpreter, "--version")
	if err != nil {
		return "", err
	}
	// Python 2 printed the version to stderr; check both streams.
	v, ok := ParseVersionOutput(res.Stdout + res.Stderr)
	if !ok {
		return "", fmt.Errorf("unrecognized version output %q from %s",
			strings.TrimSpace(res.Stdout+res.Stderr), interpreter)
	}
	return v, nil
}

// CheckImports probes importability of each module in a single interpreter
// invocation.
func (r *Runner) CheckImports(ctx context.Context, interpreter string, modules []string) (map[string]bool, error) {
	ctx, cancel := r.probeContext(ctx)
	defer cancel()

	seen := make(map[string]struct{}, len(modules))
	args := []string{"-c", probeProgram}
	for _, m := range modules {
		if _, dup := seen[m]; dup || m == "" {
			continue
		}
		seen[m] = struct{}{}
		args = append(args, m)
	}

	res, err := r.Command(ctx, interpreter, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrProbeFailed, strings.TrimSpace(res.Stderr))
	}

	installed := make(map[string]bool, len(seen))
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ok "):
			installed[strings.TrimPrefix(line, "ok ")] = true
		case strings.HasPrefix(line, "missing "):
			installed[strings.TrimPrefix(line, "missing ")] = false
		}
	}
	for m := range seen {
		if _, reported := installed[m]; !reported {
			return nil, fmt.Errorf("%w: no result for module %q", domain.ErrProbeFailed, m)
		}
	}
	return installed, nil
}

// Run executes a script file with the given working directory. A non-zero
// script exit is reported in the result, not as an error.
func (r *Runner) Run(ctx context.Context, interpreter, script, dir string) (domain.RunResult, error) {
	ctx, cancel := r.probeContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, interpreter, script)
	cmd.Dir = dir
	return r.start(ctx, cmd, interpreter)
}

// Command executes an arbitrary argv. It applies no timeout of its own;
// installs are bounded by the caller's context.
func (r *Runner) Command(ctx context.Context, name string, args ...string) (domain.RunResult, error) {
	return r.start(ctx, exec.CommandContext(ctx, name, args...), name)
}

func (r *Runner) start(ctx context.Context, cmd *exec.Cmd, name string) (domain.RunResult, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := domain.RunResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exit *exec.ExitError
		switch {
		case errors.As(err, &exit):
			res.ExitCode = exit.ExitCode()
			if ctx.Err() != nil {
				return res, fmt.Errorf("run %s: %w", name, ctx.Err())
			}
			return res, nil
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return res, fmt.Errorf("%w: %s", domain.ErrInterpreterNotFound, name)
		default:
			return res, fmt.Errorf("run %s: %w", name, err)
		}
	}
	return res, nil
}

var (
	versionRe        = regexp.MustCompile(`Python (\d+\.\d+(?:\.\d+)?)`)
	moduleNotFoundRe = regexp.MustCompile(`ModuleNotFoundError: No module named '([^']+)'`)
	importErrorRe    = regexp.MustCompile(`ImportError: No module named '?([A-Za-z0-9_.]+)'?`)
)

// ParseVersionOutput extracts "X.Y.Z" from a "Python X.Y.Z" version banner.
func ParseVersionOutput(s string) (string, bool) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseMissingModule extracts the module named by a CPython import failure.
// When a traceback reports several, the last one (the actual failure) wins.
func ParseMissingModule(stderr string) (string, bool) {
	if ms := moduleNotFoundRe.FindAllStringSubmatch(stderr, -1); len(ms) > 0 {
		return ms[len(ms)-1][1], true
	}
	if ms := importErrorRe.FindAllStringSubmatch(stderr, -1); len(ms) > 0 {
		return ms[len(ms)-1][1], true
	}
	return "", false
}

// Compile-time assertion that Runner implements domain.PythonRunner.
var _ domain.PythonRunner = (*Runner)(nil)
