package imports

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeryldev/pyworks/internal/domain"
)

// Classify maps a path to the kind of Python source it holds.
func Classify(path string) domain.FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return domain.FilePython
	case ".ipynb":
		return domain.FileNotebook
	default:
		return domain.FileOther
	}
}

// ScanFile scans a Python source file for imported top-level modules.
func ScanFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Scan(f)
}

// Scan extracts the top-level modules imported by Python source. Scanning is
// line oriented and deliberately best effort: it sees through indentation and
// "as" renames but not through exec() or string literals that merely mention
// imports. Relative and __future__ imports are ignored. The result is sorted
// and deduplicated.
func Scan(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, mod := range parseImportLine(sc.Text()) {
			seen[mod] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	mods := make([]string, 0, len(seen))
	for m := range seen {
		mods = append(mods, m)
	}
	sort.Strings(mods)
	return mods, nil
}

// ThirdParty filters out standard library modules.
func ThirdParty(mods []string) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		if !IsStdlib(m) {
			out = append(out, m)
		}
	}
	return out
}

// parseImportLine returns the top-level modules named by one source line.
// Semicolons separate statements, so each segment is parsed on its own.
func parseImportLine(line string) []string {
	var mods []string
	for _, stmt := range strings.Split(line, ";") {
		mods = append(mods, parseImportStmt(strings.TrimSpace(stmt))...)
	}
	return mods
}

func parseImportStmt(stmt string) []string {
	switch {
	case strings.HasPrefix(stmt, "import "):
		return parseImportClause(strings.TrimPrefix(stmt, "import "))
	case strings.HasPrefix(stmt, "from "):
		rest := strings.TrimPrefix(stmt, "from ")
		fields := strings.Fields(rest)
		if len(fields) < 2 || fields[1] != "import" {
			return nil
		}
		return moduleRoot(fields[0])
	default:
		return nil
	}
}

// parseImportClause handles "a.b as c, d.e" after the import keyword.
func parseImportClause(clause string) []string {
	if i := strings.IndexByte(clause, '#'); i >= 0 {
		clause = clause[:i]
	}
	var mods []string
	for _, part := range strings.Split(clause, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		mods = append(mods, moduleRoot(fields[0])...)
	}
	return mods
}

// moduleRoot reduces a dotted module path to its importable root, dropping
// relative and __future__ imports.
func moduleRoot(dotted string) []string {
	if dotted == "" || strings.HasPrefix(dotted, ".") {
		return nil
	}
	root, _, _ := strings.Cut(dotted, ".")
	if root == "" || root == "__future__" || !validModuleName(root) {
		return nil
	}
	return []string{root}
}

func validModuleName(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return name != ""
}
