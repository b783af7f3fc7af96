package app

import (
	"path/filepath"
	"strings"

	"github.com/jeryldev/pyworks/internal/config"
	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/pypi"
	"github.com/jeryldev/pyworks/internal/python"
	detectsvc "github.com/jeryldev/pyworks/internal/services/detect"
	envsvc "github.com/jeryldev/pyworks/internal/services/envdetect"
	installsvc "github.com/jeryldev/pyworks/internal/services/installer"
	kernelsvc "github.com/jeryldev/pyworks/internal/services/kernels"
	pkgsvc "github.com/jeryldev/pyworks/internal/services/packages"
	selftestsvc "github.com/jeryldev/pyworks/internal/services/selftest"
	"github.com/jeryldev/pyworks/internal/store"
)

// Wire bundles all stores, services and clients for the CLI.
type Wire struct {
	Runner    domain.PythonRunner
	Cache     domain.CacheStore
	Index     domain.PackageIndex
	Envs      domain.EnvironmentService
	Kernels   domain.KernelService
	Packages  domain.PackageService
	Installer domain.InstallService
	Detect    domain.DetectService
	Selftest  domain.SelftestService
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg *config.Config) (*Wire, error) {
	// File-based cache under the pyworks home
	cache := store.NewFileStore(filepath.Join(cfg.Home, "cache"))

	runner := python.New(cfg.Python.Timeout)

	// Package index client, or a disabled stand-in when lookups are off.
	// An empty URL disables lookups just like INDEX_ENABLED=false.
	var index domain.PackageIndex = pypi.Disabled{}
	if cfg.Index.Enabled && cfg.Index.URL != "" {
		index = pypi.NewHTTP(cfg.Index.URL)
	}

	// High-level services
	envs := envsvc.New(runner, cache, envsvc.Options{TTL: cfg.Cache.EnvTTL})
	kernels := kernelsvc.New(runner, kernelsvc.Options{ExtraDataDirs: cfg.Jupyter.DataDirs})
	packages := pkgsvc.New(runner, cache, index, cfg.Cache.ProbeTTL)
	installer := installsvc.New(runner, installsvc.Options{
		AllowUV:  cfg.Installer.AllowUV,
		Override: strings.Fields(cfg.Installer.Command),
	})
	detect := detectsvc.New(envs, kernels, packages, detectsvc.Options{})
	selftest := selftestsvc.New(envs, runner)

	return &Wire{
		Runner:    runner,
		Cache:     cache,
		Index:     index,
		Envs:      envs,
		Kernels:   kernels,
		Packages:  packages,
		Installer: installer,
		Detect:    detect,
		Selftest:  selftest,
	}, nil
}
