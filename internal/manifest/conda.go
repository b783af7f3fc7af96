package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
)

// CondaEnv is the parsed form of an environment.yml.
type CondaEnv struct {
	Name         string
	Requirements []domain.Requirement
}

type condaDoc struct {
	Name         string `yaml:"name"`
	Dependencies []any  `yaml:"dependencies"`
}

// ParseCondaEnvFile parses an environment.yml from disk.
func ParseCondaEnvFile(path string) (CondaEnv, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CondaEnv{}, err
	}
	return ParseCondaEnv(data)
}

// ParseCondaEnv extracts the environment name and its dependencies. Conda
// lists dependencies as "name=version[=build]" strings plus an optional
// nested map carrying pip requirement lines. The python and pip entries
// describe tooling rather than packages and are skipped.
func ParseCondaEnv(data []byte) (CondaEnv, error) {
	var doc condaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return CondaEnv{}, fmt.Errorf("parse environment.yml: %w", err)
	}

	env := CondaEnv{Name: doc.Name}
	for _, dep := range doc.Dependencies {
		switch v := dep.(type) {
		case string:
			// Strip "channel::" prefixes and "=version[=build]" pins.
			name := v
			if _, after, ok := strings.Cut(name, "::"); ok {
				name = after
			}
			if i := strings.IndexAny(name, "=<>!"); i >= 0 {
				name = name[:i]
			}
			name = imports.Normalize(name)
			if name == "" || name == "python" || name == "pip" {
				continue
			}
			env.Requirements = append(env.Requirements, requirement(name, "environment.yml"))
		case map[string]any:
			pip, ok := v["pip"].([]any)
			if !ok {
				continue
			}
			for _, entry := range pip {
				line, ok := entry.(string)
				if !ok {
					continue
				}
				if name, ok := requirementName(line); ok {
					env.Requirements = append(env.Requirements, requirement(name, "environment.yml"))
				}
			}
		}
	}
	return env, nil
}
