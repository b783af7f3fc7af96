package packages

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
	"github.com/jeryldev/pyworks/internal/manifest"
)

// DefaultProbeTTL bounds how long a cached probe result is trusted. Packages
// can be installed behind our back, so this stays short.
const DefaultProbeTTL = 15 * time.Minute

// Service resolves requirements and probes what is installed.
type Service struct {
	runner domain.PythonRunner
	cache  domain.CacheStore
	index  domain.PackageIndex
	ttl    time.Duration
}

// New returns a package service. A zero ttl selects DefaultProbeTTL.
func New(runner domain.PythonRunner, cache domain.CacheStore, index domain.PackageIndex, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultProbeTTL
	}
	return &Service{runner: runner, cache: cache, index: index, ttl: ttl}
}

// Requirements collects the third-party requirements for a file: imports
// scanned from the source itself plus declarations from manifests at root.
// Scanned imports come first; manifest-only entries follow.
func (s *Service) Requirements(path, root string) ([]domain.Requirement, error) {
	var mods []string
	switch imports.Classify(path) {
	case domain.FilePython:
		scanned, err := imports.ScanFile(path)
		if err != nil {
			return nil, err
		}
		mods = imports.ThirdParty(scanned)
	case domain.FileNotebook:
		nb, err := imports.ScanNotebookFile(path)
		if err != nil {
			return nil, err
		}
		mods = imports.ThirdParty(nb.Modules)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotPythonFile, path)
	}

	reqs := make([]domain.Requirement, 0, len(mods))
	seen := make(map[string]struct{}, len(mods))
	for _, m := range mods {
		dist := imports.Distribution(m)
		seen[dist] = struct{}{}
		reqs = append(reqs, domain.Requirement{Import: m, Distribution: dist, Source: "scan"})
	}

	declared, err := manifest.Load(root)
	if err != nil {
		// A broken manifest must not block detection for the file itself.
		log.WithError(err).WithField("root", root).Warn("skipping unreadable manifest")
		return reqs, nil
	}
	for _, req := range declared {
		if _, dup := seen[req.Distribution]; dup {
			continue
		}
		seen[req.Distribution] = struct{}{}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Check probes env for every requirement. Results are cached per environment
// fingerprint; fresh forces a re-probe.
func (s *Service) Check(ctx context.Context, env domain.Environment, reqs []domain.Requirement, fresh bool) ([]domain.PackageStatus, error) {
	mods := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if _, dup := seen[req.Import]; dup || req.Import == "" {
			continue
		}
		seen[req.Import] = struct{}{}
		mods = append(mods, req.Import)
	}
	sort.Strings(mods)

	installed, ok := s.cachedProbe(env, mods, fresh)
	if !ok {
		probed, err := s.runner.CheckImports(ctx, env.Interpreter, mods)
		if err != nil {
			return nil, err
		}
		installed = probed
		s.saveProbe(env, probed)
	}

	statuses := make([]domain.PackageStatus, len(reqs))
	for i, req := range reqs {
		statuses[i] = domain.PackageStatus{
			Requirement: req,
			Installed:   installed[req.Import],
		}
	}
	return statuses, nil
}

// Latest asks the package index for the newest release of a distribution.
func (s *Service) Latest(ctx context.Context, distribution string) (string, error) {
	return s.index.LatestVersion(ctx, distribution)
}

// cachedProbe returns a cached probe result when it is fresh and answers
// every requested module.
func (s *Service) cachedProbe(env domain.Environment, mods []string, fresh bool) (map[string]bool, bool) {
	if fresh || env.Fingerprint == "" {
		return nil, false
	}
	cached, savedAt, ok, err := s.cache.LoadProbe(env.Fingerprint)
	if err != nil {
		log.WithError(err).Warn("read probe cache")
		return nil, false
	}
	if !ok || time.Since(savedAt) > s.ttl {
		return nil, false
	}
	for _, m := range mods {
		if _, answered := cached[m]; !answered {
			return nil, false
		}
	}
	log.WithField("fingerprint", env.Fingerprint).Debug("probe cache hit")
	return cached, true
}

// saveProbe merges the new result into the cached one, so partial probes for
// different files accumulate instead of clobbering each other.
func (s *Service) saveProbe(env domain.Environment, probed map[string]bool) {
	if env.Fingerprint == "" {
		return
	}
	merged := probed
	if cached, _, ok, err := s.cache.LoadProbe(env.Fingerprint); err == nil && ok {
		for m, inst := range probed {
			cached[m] = inst
		}
		merged = cached
	}
	if err := s.cache.SaveProbe(env.Fingerprint, merged); err != nil {
		log.WithError(err).Warn("cache probe result")
	}
}

// Compile-time assertion that Service implements domain.PackageService.
var _ domain.PackageService = (*Service)(nil)
