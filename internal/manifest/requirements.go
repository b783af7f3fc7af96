package manifest

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/imports"
)

// ParseRequirementsFile parses a pip requirements.txt from disk.
func ParseRequirementsFile(path string) ([]domain.Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRequirements(f)
}

// ParseRequirements parses pip requirement lines. Options, includes, editable
// installs and bare URLs carry no distribution name and are skipped.
func ParseRequirements(r io.Reader) ([]domain.Requirement, error) {
	var reqs []domain.Requirement

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, ok := requirementName(sc.Text())
		if !ok {
			continue
		}
		reqs = append(reqs, requirement(name, "requirements.txt"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return reqs, nil
}

// requirementName extracts the normalized distribution name from a PEP 508
// requirement line such as "Requests[security]>=2.31 ; python_version>'3.8'".
func requirementName(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
		return "", false
	}
	// git+https://... and bare URLs name no distribution; the "name @ url"
	// direct-reference form does and falls through.
	if strings.Contains(strings.Fields(line)[0], "://") {
		return "", false
	}

	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexAny(line, "=<>!~@["); i >= 0 {
		line = line[:i]
	}
	name := imports.Normalize(strings.TrimSpace(line))
	if name == "" {
		return "", false
	}
	return name, true
}
