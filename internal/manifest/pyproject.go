package manifest

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
)

// pyproject covers both dependency conventions found in the wild: the
// PEP 621 [project] table and poetry's [tool.poetry] table. Poetry dependency
// values may be version strings or tables, so they decode as any.
type pyproject struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ParsePyprojectFile parses a pyproject.toml from disk.
func ParsePyprojectFile(path string) ([]domain.Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePyproject(data)
}

// ParsePyproject extracts dependencies from a pyproject.toml. The "python"
// entry in poetry dependencies pins the interpreter, not a package, and is
// skipped.
func ParsePyproject(data []byte) ([]domain.Requirement, error) {
	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pyproject.toml: %w", err)
	}

	var reqs []domain.Requirement
	for _, spec := range doc.Project.Dependencies {
		if name, ok := requirementName(spec); ok {
			reqs = append(reqs, requirement(name, "pyproject.toml"))
		}
	}

	poetry := make([]string, 0, len(doc.Tool.Poetry.Dependencies))
	for name := range doc.Tool.Poetry.Dependencies {
		poetry = append(poetry, name)
	}
	sort.Strings(poetry)
	for _, name := range poetry {
		norm := imports.Normalize(name)
		if norm == "" || norm == "python" {
			continue
		}
		reqs = append(reqs, requirement(norm, "pyproject.toml"))
	}
	return reqs, nil
}

func requirement(dist, source string) domain.Requirement {
	return domain.Requirement{
		Import:       imports.ImportName(dist),
		Distribution: dist,
		Source:       source,
	}
}
