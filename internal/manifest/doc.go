// Package manifest parses Python dependency manifests: pip requirements.txt,
// pyproject.toml (PEP 621 and poetry) and conda environment.yml.
package manifest
