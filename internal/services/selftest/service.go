package selftest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
	"github.com/jeryldev/pyworks/internal/python"
)

// ScriptName is the file name the fixture is written under.
const ScriptName = "test_auto_detection.py"

// ExpectedStdout is the only output a passing fixture run may produce.
const ExpectedStdout = "Testing automatic detection\n"

// fixtureScript is the canonical detection fixture. Its content is
// byte-stable: editors and CI pipelines diff repeated emissions against each
// other, so nothing here may depend on runtime state.
const fixtureScript = `#!/usr/bin/env python3
"""Test file to verify automatic detection and kernel initialization"""

import numpy as np
import pandas as pd
import matplotlib.pyplot as plt

# This file should trigger:
# 1. "Detected Python file - checking for Jupyter support..."
# 2. Kernel detection and initialization
# 3. Package detection showing missing packages
# 4. A prompt to install them (pyworks install)

print("Testing automatic detection")
`

// Service owns the canonical detection fixture and runs it.
type Service struct {
	envs   domain.EnvironmentService
	runner domain.PythonRunner
}

// New returns a selftest service backed by the given environment selection
// and runner.
func New(envs domain.EnvironmentService, runner domain.PythonRunner) *Service {
	return &Service{envs: envs, runner: runner}
}

// Script returns the fixture source.
func (s *Service) Script() []byte { return []byte(fixtureScript) }

// WriteScript writes the fixture to path.
func (s *Service) WriteScript(path string) error {
	return os.WriteFile(path, s.Script(), 0o644)
}

// Run writes the fixture to a scratch dir and executes it under the selected
// environment. The child's stdout, stderr and exit status are reported
// verbatim; a missing import is parsed into the distribution that provides
// it. The run passed if the child exited 0 with exactly the expected stdout.
func (s *Service) Run(ctx context.Context, override string) (domain.SelftestResult, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return domain.SelftestResult{}, err
	}
	env, err := s.envs.Select(ctx, cwd, override)
	if err != nil {
		return domain.SelftestResult{}, err
	}
	log.WithFields(log.Fields{"env": env.Name, "interpreter": env.Interpreter}).
		Info("running detection fixture")

	dir, err := os.MkdirTemp("", "pyworks-selftest-*")
	if err != nil {
		return domain.SelftestResult{}, err
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, ScriptName)
	if err := s.WriteScript(script); err != nil {
		return domain.SelftestResult{}, err
	}

	res, err := s.runner.Run(ctx, env.Interpreter, script, dir)
	if err != nil {
		return domain.SelftestResult{}, fmt.Errorf("run fixture: %w", err)
	}

	result := domain.SelftestResult{
		Environment: env,
		Script:      script,
		RunResult:   res,
		Passed:      res.ExitCode == 0 && res.Stdout == ExpectedStdout,
	}
	if mod, ok := python.ParseMissingModule(res.Stderr); ok {
		result.Missing = append(result.Missing, imports.Distribution(mod))
	}
	return result, nil
}

// Compile-time assertion that Service implements domain.SelftestService.
var _ domain.SelftestService = (*Service)(nil)
