package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/util/pathutil"
)

// rootMarkers identify a Python project root, in the order they are trusted.
var rootMarkers = []string{
	"pyproject.toml",
	"requirements.txt",
	"environment.yml",
	"setup.py",
	"setup.cfg",
	"Pipfile",
	".git",
}

// FindProjectRoot walks up from start (a file or directory) looking for a
// project marker. It reports the first directory carrying one.
func FindProjectRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, marker := range rootMarkers {
			if pathutil.Exists(filepath.Join(dir, marker)) {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load parses every manifest present in root and merges their dependencies.
// When a distribution appears in several manifests the earliest listed
// manifest wins, so pins in requirements.txt shadow looser pyproject entries.
func Load(root string) ([]domain.Requirement, error) {
	var all []domain.Requirement

	if path := filepath.Join(root, "requirements.txt"); pathutil.Exists(path) {
		reqs, err := ParseRequirementsFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, reqs...)
	}
	if path := filepath.Join(root, "pyproject.toml"); pathutil.Exists(path) {
		reqs, err := ParsePyprojectFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, reqs...)
	}
	if path := filepath.Join(root, "environment.yml"); pathutil.Exists(path) {
		env, err := ParseCondaEnvFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Requirements...)
	}

	seen := make(map[string]struct{}, len(all))
	merged := make([]domain.Requirement, 0, len(all))
	for _, req := range all {
		if _, dup := seen[req.Distribution]; dup {
			continue
		}
		seen[req.Distribution] = struct{}{}
		merged = append(merged, req)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Distribution < merged[j].Distribution
	})
	return merged, nil
}
